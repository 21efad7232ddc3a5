// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package chapter

import "context"

// # Chapter Data Access

// Repository defines the data access contract for the ordered chapter
// collection. Implementations must preserve the density invariant: after
// any successful call, the chapters of a book occupy positions 0..N-1.
type Repository interface {

	/*
		ListByBook returns every chapter of the book ordered by position
		ascending. The collection is small by design, so no pagination.

		Parameters:
		  - ctx: context.Context
		  - bookID: string (UUID)

		Returns:
		  - []*Chapter: ordered chapters, possibly empty
		  - error: storage failures
	*/
	ListByBook(ctx context.Context, bookID string) ([]*Chapter, error)

	/*
		FindByID returns the chapter with the given ID.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)

		Returns:
		  - *Chapter: the chapter
		  - error: NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Chapter, error)

	/*
		Create appends the chapter at its assigned position.

		Parameters:
		  - ctx: context.Context
		  - chapter: *Chapter (ID and Position already assigned)

		Returns:
		  - error: Conflict on a position collision, storage failures
	*/
	Create(ctx context.Context, chapter *Chapter) error

	/*
		Rename updates the chapter's title in place. Positions and version
		history are untouched.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)
		  - title: string

		Returns:
		  - error: NotFound if missing
	*/
	Rename(ctx context.Context, id, title string) error

	/*
		Delete removes the chapter and renumbers the book's survivors to
		0..N-1 by their prior order, all in one transaction. Versions go
		with the chapter via cascading foreign keys.

		Parameters:
		  - ctx: context.Context
		  - chapter: *Chapter (the loaded chapter being removed)

		Returns:
		  - error: NotFound if already gone, storage failures
	*/
	Delete(ctx context.Context, chapter *Chapter) error

	/*
		Reorder assigns position = slice index for every chapter in
		orderedIDs, in one transaction. The caller has already validated
		that orderedIDs is an exact permutation of the book's chapter IDs.

		Parameters:
		  - ctx: context.Context
		  - bookID: string (UUID)
		  - orderedIDs: []string (complete permutation)

		Returns:
		  - error: storage failures; on error no position changed
	*/
	Reorder(ctx context.Context, bookID string, orderedIDs []string) error
}
