// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package feed implements the table-change notification channel that keeps
every connected client consistent with the backing store.

Architecture:

  - Publisher: fires a notification on the table's Redis channel after every
    successful mutation. Notifications are advisory; they carry no payload a
    consumer is allowed to patch from.
  - Reconciler: a client-side subscription handle. On ANY event for its
    table it re-runs the full canonical query and replaces its local
    snapshot wholesale. This makes it idempotent and order-independent:
    duplicate or stale events produce the same final state.
  - Hub: websocket fan-out relaying every event to connected UI clients,
    which run the same notify-then-refetch loop.

Delivery is at-least-once and unordered. A missed event means staleness
until the next event or the next manual navigation; nothing is buffered.
*/
package feed

import (
	"github.com/prosepilot/api/internal/platform/constants"
)

// # Tables

// Table identifies a backing-store table that emits change notifications.
type Table string

const (
	// TableBooks covers the book library list views.
	TableBooks Table = "books"

	// TableChapters covers per-book chapter lists.
	TableChapters Table = "chapters"

	// TableVersions covers per-chapter version histories.
	TableVersions Table = "chapter_versions"
)

// Channel returns the Redis PubSub channel name for the table.
func (t Table) Channel() string {
	return constants.FeedChannelPrefix + string(t)
}

// # Events

// Op is the kind of row mutation that triggered a notification.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is a table-change notification.
//
// Consumers must NOT treat an Event as a patch: the only contracted use is
// "something changed in this table, re-fetch your canonical view". EntityID
// and BookID exist for logging and for fan-out scoping, not for state merging.
type Event struct {
	Table    Table  `json:"table"`
	Op       Op     `json:"op"`
	EntityID string `json:"entity_id"`

	// BookID scopes chapter/version events to their owning book.
	// Empty for TableBooks events.
	BookID string `json:"book_id,omitempty"`
}
