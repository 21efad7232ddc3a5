// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book

import (
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/team"
)

// # Access Control

// Access describes one actor's relationship to one book. It is resolved by
// the repository in a single query (owner match + team membership role).
type Access struct {
	// IsOwner is true when the actor owns the book directly.
	IsOwner bool

	// TeamRole is the actor's role in the owning team, empty when the book
	// is user-owned or the actor is not a member.
	TeamRole team.Role
}

// CanRead reports whether the actor may see the book at all.
func (a Access) CanRead() bool {
	return a.IsOwner || a.TeamRole != ""
}

// CanEdit reports whether the actor may mutate the book and its chapters.
//
// Authorization is orthogonal to the editability gate and is checked first:
// a team reader is rejected with Forbidden even on a draft book, and an
// editor is rejected with NotEditable on a published one.
func (a Access) CanEdit() bool {
	if a.IsOwner {
		return true
	}
	return a.TeamRole.AtLeast(team.RoleEditor)
}

// ErrNoAccess is the rejection for actors with no relationship to the book.
// It is a NotFound on purpose: revealing the book's existence to outsiders
// would leak library contents.
func ErrNoAccess() *apperr.AppError {
	return apperr.NotFound("Book")
}

// ErrReadOnly is the rejection for team readers attempting a mutation.
func ErrReadOnly() *apperr.AppError {
	return apperr.Forbidden("Your team role does not allow editing this book")
}
