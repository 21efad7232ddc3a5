// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package version

import "context"

// # Version Data Access

// Repository defines the data access contract for chapter version
// histories. The contract is append-only: there is no update and no
// single-row delete.
type Repository interface {

	/*
		ListByChapter returns the chapter's versions ordered newest first by
		(created_at, seq).

		Parameters:
		  - ctx: context.Context
		  - chapterID: string (UUID)

		Returns:
		  - []*Version: descending history, possibly empty
		  - error: storage failures
	*/
	ListByChapter(ctx context.Context, chapterID string) ([]*Version, error)

	/*
		FindByID returns one version.

		Parameters:
		  - ctx: context.Context
		  - id: string (UUID)

		Returns:
		  - *Version: the version
		  - error: NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Version, error)

	/*
		Newest returns the chapter's most recent version.

		Parameters:
		  - ctx: context.Context
		  - chapterID: string (UUID)

		Returns:
		  - *Version: the current version
		  - error: NotFound when the chapter has no versions yet
	*/
	Newest(ctx context.Context, chapterID string) (*Version, error)

	/*
		Create appends a version. The storage layer assigns seq and
		created_at; the row is immutable afterwards.

		Parameters:
		  - ctx: context.Context
		  - version: *Version (ID, ChapterID, Content, CreatedBy set)

		Returns:
		  - error: storage failures
	*/
	Create(ctx context.Context, version *Version) error
}
