// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prosepilot/api/internal/platform/database/schema"
	"github.com/prosepilot/api/internal/platform/dberr"
)

// # PostgreSQL Repository

// memberRepository implements [MemberRepository] using pgx.
type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository constructs a PostgreSQL backed membership store.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

// RoleOf returns the role userID holds in teamID, or "" for non-members.
func (repository *memberRepository) RoleOf(ctx context.Context, teamID, userID string) (Role, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 AND %s = $2
	`,
		schema.TeamMembers.Role,
		schema.TeamMembers.Table,
		schema.TeamMembers.TeamID,
		schema.TeamMembers.UserID,
	)

	var role Role
	err := repository.pool.QueryRow(ctx, query, teamID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		// Not a member — the caller decides whether that is a problem.
		return "", nil
	}
	if err != nil {
		return "", dberr.Wrap(err, "team.RoleOf")
	}

	return role, nil
}

// TeamsOf returns every team the user belongs to.
func (repository *memberRepository) TeamsOf(ctx context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`,
		schema.TeamMembers.TeamID,
		schema.TeamMembers.Table,
		schema.TeamMembers.UserID,
	)

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "team.TeamsOf")
	}
	defer rows.Close()

	var teamIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "team.TeamsOf.scan")
		}
		teamIDs = append(teamIDs, id)
	}

	return teamIDs, dberr.Wrap(rows.Err(), "team.TeamsOf.rows")
}
