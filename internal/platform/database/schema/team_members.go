package schema

// TeamMembersTable represents the 'team_members' junction table
type TeamMembersTable struct {
	Table     string
	TeamID    string
	UserID    string
	Role      string
	CreatedAt string
}

// TeamMembers is the schema definition for team_members
var TeamMembers = TeamMembersTable{
	Table:     "team_members",
	TeamID:    "team_id",
	UserID:    "user_id",
	Role:      "role",
	CreatedAt: "created_at",
}
