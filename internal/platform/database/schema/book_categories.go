package schema

// BookCategoriesTable represents the 'book_categories' junction table
type BookCategoriesTable struct {
	Table      string
	BookID     string
	CategoryID string
}

// BookCategories is the schema definition for book_categories
var BookCategories = BookCategoriesTable{
	Table:      "book_categories",
	BookID:     "book_id",
	CategoryID: "category_id",
}
