package schema

// BooksTable represents the 'books' table
type BooksTable struct {
	Table       string
	ID          string
	Title       string
	AuthorName  string
	ISBN        string
	CoverKey    string
	Synopsis    string
	Status      string
	LanguageID  string
	OwnerUserID string
	OwnerTeamID string
	CreatedAt   string
	UpdatedAt   string
}

// Books is the schema definition for books
var Books = BooksTable{
	Table:       "books",
	ID:          "id",
	Title:       "title",
	AuthorName:  "author_name",
	ISBN:        "isbn",
	CoverKey:    "cover_key",
	Synopsis:    "synopsis",
	Status:      "status",
	LanguageID:  "language_id",
	OwnerUserID: "owner_user_id",
	OwnerTeamID: "owner_team_id",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

func (t BooksTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.AuthorName, t.ISBN, t.CoverKey, t.Synopsis,
		t.Status, t.LanguageID, t.OwnerUserID, t.OwnerTeamID,
		t.CreatedAt, t.UpdatedAt,
	}
}
