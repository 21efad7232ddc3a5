package schema

// ChaptersTable represents the 'chapters' table
type ChaptersTable struct {
	Table     string
	ID        string
	BookID    string
	Title     string
	Kind      string
	Position  string
	CreatedAt string
	UpdatedAt string
}

// Chapters is the schema definition for chapters.
// Position holds the zero-based dense ordering ("order" is a reserved
// word in SQL, hence the rename).
var Chapters = ChaptersTable{
	Table:     "chapters",
	ID:        "id",
	BookID:    "book_id",
	Title:     "title",
	Kind:      "kind",
	Position:  "position",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

func (t ChaptersTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Title, t.Kind, t.Position, t.CreatedAt, t.UpdatedAt,
	}
}
