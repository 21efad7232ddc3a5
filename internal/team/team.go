// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package team models shared ownership of books.

A book's owner is either a single user or a team; team members carry a role
that, together with the book's lifecycle status, determines whether an
actor may mutate. Team creation, invitations, and email delivery belong to
external collaborators — this package only answers "what is this user's
role on this team?".
*/
package team

import "time"

// # Entities

// Team is a shared workspace that can own books.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Member links a user to a team with a role.
type Member struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// # Roles

// Role is the authorization level a member holds within a team.
type Role string

const (
	// RoleAdmin manages the team and all of its books.
	RoleAdmin Role = "admin"

	// RoleEditor may edit team books but not manage membership.
	RoleEditor Role = "editor"

	// RoleReader has read-only access to team books.
	RoleReader Role = "reader"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleReader
}

// AtLeast checks if the role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleReader:
		return 10
	default:
		return 0
	}
}
