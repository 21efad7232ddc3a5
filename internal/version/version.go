// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package version implements the append-only content history of a chapter.

Every save appends a new immutable version; nothing ever updates or deletes
one (chapter deletion cascades the whole history away, but no operation
touches an individual row). "Current" is not stored anywhere — it is
derived: the newest version by (created_at, seq) is the chapter's content.
Restore follows the same rule: it appends a fresh version carrying an older
version's content, so history only ever grows and every restore is itself
undoable by another restore.
*/
package version

import (
	"fmt"
	"time"
)

// # Entities

// Version is one immutable snapshot of a chapter's content.
type Version struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Seq is a storage-assigned monotonic tiebreak for versions created in
	// the same created_at instant. Never exposed for ordering decisions by
	// clients; listings come pre-sorted.
	Seq int64 `json:"-"`

	// Current and Label are listing decorations derived from the version's
	// place in its chapter's history. Zero-valued outside listings.
	Current bool   `json:"current"`
	Label   string `json:"label,omitempty"`
}

// Decorate stamps the derived listing fields onto versions sorted newest
// first: element 0 is current, and labels count down so the oldest version
// is "Version 1".
func Decorate(versions []*Version) {
	total := len(versions)
	for index, version := range versions {
		version.Current = index == 0
		version.Label = fmt.Sprintf("Version %d", total-index)
	}
}

// # Field Identifiers

// Standardized field names for validation errors.
const (
	FieldID      = "id"
	FieldContent = "content"
)
