// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package chapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prosepilot/api/internal/platform/database/schema"
	"github.com/prosepilot/api/internal/platform/dberr"
)

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
//
// The unique constraint on (book_id, position) is DEFERRABLE INITIALLY
// DEFERRED, so renumbering and reordering can move rows through transient
// collisions inside a transaction and only settle at commit.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListByBook returns the book's chapters ordered by position ascending.
func (repository *repository) ListByBook(ctx context.Context, bookID string) ([]*Chapter, error) {
	c := schema.Chapters

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		c.ID, c.BookID, c.Title, c.Kind, c.Position, c.CreatedAt, c.UpdatedAt,
		c.Table, c.BookID, c.Position,
	)

	rows, err := repository.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter.ListByBook")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		var chapter Chapter
		if err := rows.Scan(
			&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.Kind,
			&chapter.Position, &chapter.CreatedAt, &chapter.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "chapter.ListByBook.scan")
		}
		chapters = append(chapters, &chapter)
	}

	return chapters, dberr.Wrap(rows.Err(), "chapter.ListByBook.rows")
}

// FindByID returns a single chapter.
func (repository *repository) FindByID(ctx context.Context, id string) (*Chapter, error) {
	c := schema.Chapters

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		c.ID, c.BookID, c.Title, c.Kind, c.Position, c.CreatedAt, c.UpdatedAt,
		c.Table, c.ID,
	)

	var chapter Chapter
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.Kind,
		&chapter.Position, &chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter.FindByID")
	}

	return &chapter, nil
}

// Create appends the chapter at its assigned position.
func (repository *repository) Create(ctx context.Context, chapter *Chapter) error {
	c := schema.Chapters

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		c.Table, c.ID, c.BookID, c.Title, c.Kind, c.Position,
		c.CreatedAt, c.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		chapter.ID, chapter.BookID, chapter.Title, chapter.Kind, chapter.Position,
	).Scan(&chapter.CreatedAt, &chapter.UpdatedAt)

	return dberr.Wrap(err, "chapter.Create")
}

// Rename updates the title in place.
func (repository *repository) Rename(ctx context.Context, id, title string) error {
	c := schema.Chapters

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now() WHERE %s = $1
	`, c.Table, c.Title, c.UpdatedAt, c.ID)

	tag, err := repository.pool.Exec(ctx, query, id, title)
	if err != nil {
		return dberr.Wrap(err, "chapter.Rename")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// Delete removes the chapter and renumbers the survivors in the same
// transaction, keeping the book's positions dense.
func (repository *repository) Delete(ctx context.Context, chapter *Chapter) error {
	c := schema.Chapters

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "chapter.Delete.begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, c.Table, c.ID), chapter.ID)
	if err != nil {
		return dberr.Wrap(err, "chapter.Delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// Close the gap: everything after the removed position shifts down one.
	renumber := fmt.Sprintf(`
		UPDATE %s SET %s = %s - 1, %s = now()
		WHERE %s = $1 AND %s > $2
	`, c.Table, c.Position, c.Position, c.UpdatedAt, c.BookID, c.Position)

	if _, err := tx.Exec(ctx, renumber, chapter.BookID, chapter.Position); err != nil {
		return dberr.Wrap(err, "chapter.Delete.renumber")
	}

	return dberr.Wrap(tx.Commit(ctx), "chapter.Delete.commit")
}

// Reorder assigns position = index for the whole permutation in one
// transaction, batched over a single prepared update.
func (repository *repository) Reorder(ctx context.Context, bookID string, orderedIDs []string) error {
	c := schema.Chapters

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "chapter.Reorder.begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	update := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = now() WHERE %s = $1 AND %s = $2
	`, c.Table, c.Position, c.UpdatedAt, c.ID, c.BookID)

	batch := &pgx.Batch{}
	for index, id := range orderedIDs {
		batch.Queue(update, id, bookID, index)
	}

	results := tx.SendBatch(ctx, batch)
	for range orderedIDs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "chapter.Reorder.batch")
		}
	}
	if err := results.Close(); err != nil {
		return dberr.Wrap(err, "chapter.Reorder.close")
	}

	return dberr.Wrap(tx.Commit(ctx), "chapter.Reorder.commit")
}
