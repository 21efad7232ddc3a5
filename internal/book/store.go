// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for books.
type Repository interface {

	/*
		ListForUser returns the actor's library: directly owned books plus
		books owned by any team the actor belongs to, newest first.

		Parameters:
		  - ctx: context.Context
		  - userID: string (UUID)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: hydrated books including category IDs
		  - int: total matching books
		  - error: storage failures
	*/
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns the book with the given ID.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)

		Returns:
		  - *Book: hydrated book including category IDs
		  - error: NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Book, error)

	/*
		Create persists a new book and its category links atomically.

		Parameters:
		  - ctx: context.Context
		  - book: *Book

		Returns:
		  - error: storage failure
	*/
	Create(ctx context.Context, book *Book) error

	/*
		UpdateMetadata replaces the descriptive fields and category links of
		an existing book in one transaction. Status and ownership are not
		touched.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)
		  - meta: Metadata

		Returns:
		  - error: NotFound if missing, storage failure otherwise
	*/
	UpdateMetadata(ctx context.Context, id string, meta Metadata) error

	/*
		UpdateStatus performs a compare-and-set status transition. The row is
		only updated when its current status equals from, which keeps two
		racing lifecycle calls from both succeeding.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)
		  - from: Status (expected current)
		  - to: Status (target)

		Returns:
		  - error: NotFound when the row is missing OR its status moved away
		    from the expected value
	*/
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	/*
		SetCoverKey records the object-storage key of the book's cover.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)
		  - key: string (object key)

		Returns:
		  - error: NotFound if missing
	*/
	SetCoverKey(ctx context.Context, id, key string) error

	/*
		Delete removes the book. Chapters and versions go with it via
		cascading foreign keys.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)

		Returns:
		  - error: NotFound if missing
	*/
	Delete(ctx context.Context, id string) error
}
