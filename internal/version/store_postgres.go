// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package version

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prosepilot/api/internal/platform/database/schema"
	"github.com/prosepilot/api/internal/platform/dberr"
)

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed version store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// versionColumns is the shared projection.
func versionColumns() string {
	v := schema.ChapterVersions
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		v.ID, v.ChapterID, v.Content, v.CreatedBy, v.Seq, v.CreatedAt)
}

// ListByChapter returns the history newest first. created_at alone is not
// a total order (two saves can land in the same instant), so seq breaks
// the tie.
func (repository *repository) ListByChapter(ctx context.Context, chapterID string) ([]*Version, error) {
	v := schema.ChapterVersions

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
	`, versionColumns(), v.Table, v.ChapterID, v.CreatedAt, v.Seq)

	rows, err := repository.pool.Query(ctx, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "version.ListByChapter")
	}
	defer rows.Close()

	var versions []*Version
	for rows.Next() {
		var version Version
		if err := rows.Scan(
			&version.ID, &version.ChapterID, &version.Content,
			&version.CreatedBy, &version.Seq, &version.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "version.ListByChapter.scan")
		}
		versions = append(versions, &version)
	}

	return versions, dberr.Wrap(rows.Err(), "version.ListByChapter.rows")
}

// FindByID returns one version.
func (repository *repository) FindByID(ctx context.Context, id string) (*Version, error) {
	v := schema.ChapterVersions

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`, versionColumns(), v.Table, v.ID)

	var version Version
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&version.ID, &version.ChapterID, &version.Content,
		&version.CreatedBy, &version.Seq, &version.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "version.FindByID")
	}

	return &version, nil
}

// Newest returns the chapter's current version.
func (repository *repository) Newest(ctx context.Context, chapterID string) (*Version, error) {
	v := schema.ChapterVersions

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT 1
	`, versionColumns(), v.Table, v.ChapterID, v.CreatedAt, v.Seq)

	var version Version
	err := repository.pool.QueryRow(ctx, query, chapterID).Scan(
		&version.ID, &version.ChapterID, &version.Content,
		&version.CreatedBy, &version.Seq, &version.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "version.Newest")
	}

	return &version, nil
}

// Create appends a version; seq and created_at come back from the insert.
func (repository *repository) Create(ctx context.Context, version *Version) error {
	v := schema.ChapterVersions

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`, v.Table, v.ID, v.ChapterID, v.Content, v.CreatedBy, v.Seq, v.CreatedAt)

	err := repository.pool.QueryRow(ctx, query,
		version.ID, version.ChapterID, version.Content, version.CreatedBy,
	).Scan(&version.Seq, &version.CreatedAt)

	return dberr.Wrap(err, "version.Create")
}
