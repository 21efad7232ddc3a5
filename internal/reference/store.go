// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package reference

import "context"

// # Reference Data Access

// Repository defines the read contract for master data.
type Repository interface {

	/*
		ListLanguages returns every supported writing language.

		Parameters:
		  - ctx: context.Context

		Returns:
		  - []*Language: ordered by code
		  - error: storage failures
	*/
	ListLanguages(ctx context.Context) ([]*Language, error)

	/*
		ListCategories returns the full category taxonomy.

		Parameters:
		  - ctx: context.Context

		Returns:
		  - []*Category: ordered by name
		  - error: storage failures
	*/
	ListCategories(ctx context.Context) ([]*Category, error)
}
