// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package chapter implements the ordered collection of chapters under a book.

Positions are the collection's single source of order and are kept dense at
all times: after every successful mutation the chapters of a book occupy
exactly the positions 0..N-1 with no gaps or duplicates. Appends take the
next free slot, deletes renumber the survivors in the same transaction, and
reorders assign the whole permutation atomically.
*/
package chapter

import "time"

// # Entities

// Kind distinguishes narrative chapters from free-form pages. Both live in
// the same ordered collection; the kind only affects default titles and
// presentation.
type Kind string

const (
	KindChapter Kind = "chapter"
	KindPage    Kind = "page"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindChapter || k == KindPage
}

// Chapter is one entry in a book's ordered collection. Content does not
// live here; it lives in the chapter's version history.
type Chapter struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

// Standardized field names for validation errors.
const (
	FieldID    = "id"
	FieldTitle = "title"
	FieldKind  = "kind"
	FieldOrder = "order"
)
