// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package book implements the top-level writable work of the platform.

A Book owns an ordered collection of chapters and carries the lifecycle
status that gates every mutation beneath it. The editability gate
([Status.Editable]) and the stricter save predicate ([Status.Writable]) are
pure functions of status; they are checked synchronously at the start of
every mutating operation in this package and in the chapter/version
packages, before any storage call is made.
*/
package book

import (
	"time"
)

// # Entities

// Book is the aggregate root of the editing core.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	ISBN       string    `json:"isbn,omitempty"`
	CoverKey   string    `json:"cover_key,omitempty"`
	Synopsis   string    `json:"synopsis"`
	Status     Status    `json:"status"`
	LanguageID string    `json:"language_id"`
	Categories []string  `json:"category_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Exactly one of the owner fields is set.
	OwnerUserID string `json:"owner_user_id,omitempty"`
	OwnerTeamID string `json:"owner_team_id,omitempty"`
}

// OwnedByUser reports whether the book belongs directly to a single user.
func (b *Book) OwnedByUser() bool { return b.OwnerUserID != "" }

// # Field Identifiers

// Standardized field names for validation errors.
const (
	FieldID         = "id"
	FieldTitle      = "title"
	FieldAuthorName = "author_name"
	FieldISBN       = "isbn"
	FieldSynopsis   = "synopsis"
	FieldStatus     = "status"
	FieldLanguageID = "language_id"
	FieldOwnerTeam  = "owner_team_id"
	FieldCover      = "cover"
)

// Metadata is the mutable descriptive subset of a [Book], used by update
// operations. Status and ownership are NOT metadata: they change only
// through their dedicated lifecycle operations.
type Metadata struct {
	Title      string   `json:"title"`
	AuthorName string   `json:"author_name"`
	ISBN       string   `json:"isbn"`
	Synopsis   string   `json:"synopsis"`
	LanguageID string   `json:"language_id"`
	Categories []string `json:"category_ids"`
}
