// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package book's PostgreSQL repository keeps the aggregate honest at the
storage layer:

  - JSON-free aggregation: category IDs ride along via array_agg in a
    single round-trip.
  - Window functions: total library counts come from COUNT(*) OVER()
    instead of a second query.
  - Compare-and-set: status transitions update WHERE status = expected,
    so racing lifecycle calls cannot both win.
  - ACID transactions: metadata and category links change together or
    not at all.
*/
package book

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
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed book store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// bookSelect is the shared projection for hydrating a [Book] with its
// category IDs aggregated in the same round-trip.
func bookSelect(extra string) string {
	b := schema.Books
	bc := schema.BookCategories
	return fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, COALESCE(b.%s, ''), COALESCE(b.%s, ''), b.%s,
			b.%s, b.%s, COALESCE(b.%s::text, ''), COALESCE(b.%s::text, ''),
			b.%s, b.%s,
			COALESCE(array_agg(bc.%s) FILTER (WHERE bc.%s IS NOT NULL), '{}')%s
		FROM %s b
		LEFT JOIN %s bc ON bc.%s = b.%s
	`,
		b.ID, b.Title, b.AuthorName, b.ISBN, b.CoverKey, b.Synopsis,
		b.Status, b.LanguageID, b.OwnerUserID, b.OwnerTeamID,
		b.CreatedAt, b.UpdatedAt,
		bc.CategoryID, bc.CategoryID, extra,
		b.Table,
		bc.Table, bc.BookID, b.ID,
	)
}

// scanBook reads one row of the shared projection.
func scanBook(row pgx.Row, extra ...any) (*Book, error) {
	var book Book
	dest := []any{
		&book.ID, &book.Title, &book.AuthorName, &book.ISBN, &book.CoverKey, &book.Synopsis,
		&book.Status, &book.LanguageID, &book.OwnerUserID, &book.OwnerTeamID,
		&book.CreatedAt, &book.UpdatedAt,
		&book.Categories,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &book, nil
}

/*
ListForUser retrieves the actor's library.

Description: Includes directly owned books and books owned by any team the
actor is a member of. Ordered newest first; the total rides along via a
window function.
*/
func (repository *repository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*Book, int, error) {
	b := schema.Books
	tm := schema.TeamMembers

	query := bookSelect(",\n\t\t\tCOUNT(*) OVER() AS total_count") + fmt.Sprintf(`
		WHERE b.%s = $1
		   OR b.%s IN (SELECT %s FROM %s WHERE %s = $1)
		GROUP BY b.%s
		ORDER BY b.%s DESC
		LIMIT $2 OFFSET $3
	`,
		b.OwnerUserID,
		b.OwnerTeamID, tm.TeamID, tm.Table, tm.UserID,
		b.ID,
		b.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "book.ListForUser")
	}
	defer rows.Close()

	var books []*Book
	var total int
	for rows.Next() {
		book, err := scanBook(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "book.ListForUser.scan")
		}
		books = append(books, book)
	}

	return books, total, dberr.Wrap(rows.Err(), "book.ListForUser.rows")
}

// FindByID returns a single hydrated book.
func (repository *repository) FindByID(ctx context.Context, id string) (*Book, error) {
	b := schema.Books

	query := bookSelect("") + fmt.Sprintf(`
		WHERE b.%s = $1
		GROUP BY b.%s
	`, b.ID, b.ID)

	book, err := scanBook(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "book.FindByID")
	}
	return book, nil
}

// Create inserts the book row and its category links in one transaction.
func (repository *repository) Create(ctx context.Context, book *Book) error {
	b := schema.Books

	return repository.inTx(ctx, func(tx pgx.Tx) error {
		insert := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, '')::uuid, NULLIF($9, '')::uuid)
			RETURNING %s, %s
		`,
			b.Table,
			b.ID, b.Title, b.AuthorName, b.ISBN, b.Synopsis, b.Status,
			b.LanguageID, b.OwnerUserID, b.OwnerTeamID,
			b.CreatedAt, b.UpdatedAt,
		)

		err := tx.QueryRow(ctx, insert,
			book.ID, book.Title, book.AuthorName, book.ISBN, book.Synopsis,
			book.Status, book.LanguageID, book.OwnerUserID, book.OwnerTeamID,
		).Scan(&book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return err
		}

		return replaceCategories(ctx, tx, book.ID, book.Categories)
	})
}

// UpdateMetadata replaces descriptive fields and category links atomically.
func (repository *repository) UpdateMetadata(ctx context.Context, id string, meta Metadata) error {
	b := schema.Books

	return repository.inTx(ctx, func(tx pgx.Tx) error {
		update := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = $3, %s = NULLIF($4, ''), %s = $5, %s = $6, %s = now()
			WHERE %s = $1
		`,
			b.Table,
			b.Title, b.AuthorName, b.ISBN, b.Synopsis, b.LanguageID, b.UpdatedAt,
			b.ID,
		)

		tag, err := tx.Exec(ctx, update, id, meta.Title, meta.AuthorName, meta.ISBN, meta.Synopsis, meta.LanguageID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return replaceCategories(ctx, tx, id, meta.Categories)
	})
}

// UpdateStatus performs the compare-and-set lifecycle transition.
func (repository *repository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	b := schema.Books

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = now() WHERE %s = $1 AND %s = $2
	`, b.Table, b.Status, b.UpdatedAt, b.ID, b.Status)

	tag, err := repository.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return dberr.Wrap(err, "book.UpdateStatus")
	}
	if tag.RowsAffected() == 0 {
		// Either the book is gone or another caller already moved it.
		return dberr.ErrNotFound
	}

	return nil
}

// SetCoverKey records the uploaded cover's object key.
func (repository *repository) SetCoverKey(ctx context.Context, id, key string) error {
	b := schema.Books

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now() WHERE %s = $1
	`, b.Table, b.CoverKey, b.UpdatedAt, b.ID)

	tag, err := repository.pool.Exec(ctx, query, id, key)
	if err != nil {
		return dberr.Wrap(err, "book.SetCoverKey")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// Delete removes the book; chapters and versions cascade via foreign keys.
func (repository *repository) Delete(ctx context.Context, id string) error {
	b := schema.Books

	tag, err := repository.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, b.Table, b.ID), id)
	if err != nil {
		return dberr.Wrap(err, "book.Delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// # Helpers

// inTx runs fn inside a transaction, translating the outcome via dberr.
func (repository *repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "book.tx.begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return dberr.Wrap(err, "book.tx")
	}

	return dberr.Wrap(tx.Commit(ctx), "book.tx.commit")
}

// replaceCategories rewrites the book_categories junction rows.
func replaceCategories(ctx context.Context, tx pgx.Tx, bookID string, categoryIDs []string) error {
	bc := schema.BookCategories

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, bc.Table, bc.BookID), bookID); err != nil {
		return err
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
				bc.Table, bc.BookID, bc.CategoryID),
			bookID, categoryID); err != nil {
			return err
		}
	}

	return nil
}
