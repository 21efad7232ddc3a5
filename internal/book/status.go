// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book

import (
	"github.com/prosepilot/api/internal/platform/apperr"
)

// # Lifecycle Status

// Status is the lifecycle state of a [Book].
type Status string

const (
	// StatusWriting: the generation collaborator is still producing content.
	// Externally controlled; nothing under the book is editable yet.
	StatusWriting Status = "writing"

	// StatusDraft: generation succeeded, the book is open for manual editing.
	StatusDraft Status = "draft"

	// StatusReviewing: under editorial review; still editable.
	StatusReviewing Status = "reviewing"

	// StatusPublished: frozen. The only way back to editability is unpublish.
	StatusPublished Status = "published"

	// StatusArchived: parked. Nominally editable in the data model, but the
	// save controls are disabled (see [Status.Writable]).
	StatusArchived Status = "archived"

	// StatusError: generation failed. Terminal; the only user action is delete.
	StatusError Status = "error"
)

// AllStatuses lists every legal status value.
var AllStatuses = []Status{
	StatusWriting, StatusDraft, StatusReviewing,
	StatusPublished, StatusArchived, StatusError,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusWriting, StatusDraft, StatusReviewing, StatusPublished, StatusArchived, StatusError:
		return true
	}
	return false
}

// # Editability Gate

// Editable is the raw editability predicate: everything except published
// may be mutated at the data-model level.
//
// This is the gate checked at the start of every mutating chapter/version
// operation. It is pure and never suspends.
func (s Status) Editable() bool {
	return s != StatusPublished
}

// Writable is the stricter presentation-level predicate behind the save
// controls: only draft and reviewing books accept new content. Archived
// books keep their data editable in principle but their controls disabled;
// writing/error books have no content to edit.
func (s Status) Writable() bool {
	return s == StatusDraft || s == StatusReviewing
}

// # Transitions

// CanTransition reports whether the manual or generation-driven move from
// s to target is legal.
//
// Legal moves:
//   - draft ⇄ archived (archive toggle)
//   - any non-published → published
//   - published → draft (unpublish; the only path back to editability)
//   - writing → draft | error (generation result, internal callers only)
//
// error is terminal: no transition leaves it (delete is not a transition).
func (s Status) CanTransition(target Status) bool {
	if !target.Valid() || s == target {
		return false
	}

	// error is terminal; delete is the only way out.
	if s == StatusError {
		return false
	}

	switch {
	case target == StatusPublished:
		return s != StatusPublished
	case s == StatusDraft && target == StatusArchived:
		return true
	case s == StatusArchived && target == StatusDraft:
		return true
	case s == StatusPublished && target == StatusDraft:
		return true
	case s == StatusWriting && (target == StatusDraft || target == StatusError):
		return true
	}

	return false
}

// # Gate Errors

// ErrNotEditable is the rejection produced when a mutation targets a book
// whose status forbids it. Mutating operations check the gate before any
// storage call, so a gate rejection implies no partial work happened.
func ErrNotEditable(status Status) *apperr.AppError {
	return apperr.NotEditable("Book is " + string(status) + " and cannot be edited")
}

// ErrBadTransition is the rejection for an illegal lifecycle move.
func ErrBadTransition(from, to Status) *apperr.AppError {
	return apperr.ValidationError("Cannot change book status from " + string(from) + " to " + string(to))
}
