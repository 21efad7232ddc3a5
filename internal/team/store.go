// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package team

import "context"

// # Team Data Access

// MemberRepository defines the read contract the editing core needs from
// team storage. Membership writes happen through the external team
// management surface, not here.
type MemberRepository interface {

	/*
		RoleOf returns the role userID holds in teamID.

		Parameters:
		  - ctx: context.Context
		  - teamID: string (UUID)
		  - userID: string (UUID)

		Returns:
		  - Role: the member's role, or "" when not a member
		  - error: storage failures only — a missing membership is not an error
	*/
	RoleOf(ctx context.Context, teamID, userID string) (Role, error)

	/*
		TeamsOf returns the IDs of every team userID belongs to.

		Parameters:
		  - ctx: context.Context
		  - userID: string (UUID)

		Returns:
		  - []string: team IDs, possibly empty
		  - error: storage failures
	*/
	TeamsOf(ctx context.Context, userID string) ([]string, error)
}
