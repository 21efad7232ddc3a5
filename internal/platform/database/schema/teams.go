package schema

// TeamsTable represents the 'teams' table
type TeamsTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
}

// Teams is the schema definition for teams
var Teams = TeamsTable{
	Table:     "teams",
	ID:        "id",
	Name:      "name",
	CreatedAt: "created_at",
}
