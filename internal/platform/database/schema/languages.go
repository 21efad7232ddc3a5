package schema

// LanguagesTable represents the 'languages' reference table
type LanguagesTable struct {
	Table string
	ID    string
	Code  string
	Name  string
}

// Languages is the schema definition for languages
var Languages = LanguagesTable{
	Table: "languages",
	ID:    "id",
	Code:  "code",
	Name:  "name",
}
