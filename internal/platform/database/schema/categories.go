package schema

// CategoriesTable represents the 'categories' reference table
type CategoriesTable struct {
	Table       string
	ID          string
	Name        string
	Description string
}

// Categories is the schema definition for categories
var Categories = CategoriesTable{
	Table:       "categories",
	ID:          "id",
	Name:        "name",
	Description: "description",
}
