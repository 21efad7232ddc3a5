package schema

// ChapterVersionsTable represents the 'chapter_versions' table
type ChapterVersionsTable struct {
	Table     string
	ID        string
	ChapterID string
	Content   string
	CreatedBy string
	Seq       string
	CreatedAt string
}

// ChapterVersions is the schema definition for chapter_versions.
// Rows are append-only: there is no updated_at because versions are
// immutable once inserted. Seq is a bigserial tiebreak for sub-second
// created_at collisions.
var ChapterVersions = ChapterVersionsTable{
	Table:     "chapter_versions",
	ID:        "id",
	ChapterID: "chapter_id",
	Content:   "content",
	CreatedBy: "created_by",
	Seq:       "seq",
	CreatedAt: "created_at",
}

func (t ChapterVersionsTable) Columns() []string {
	return []string{
		t.ID, t.ChapterID, t.Content, t.CreatedBy, t.Seq, t.CreatedAt,
	}
}
