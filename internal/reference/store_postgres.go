// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prosepilot/api/internal/platform/database/schema"
	"github.com/prosepilot/api/internal/platform/dberr"
)

// # PostgreSQL Repository

// repository implements [Repository] using a pgxpool.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed reference store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListLanguages retrieves all supported writing languages ordered by code.
func (repository *repository) ListLanguages(ctx context.Context) ([]*Language, error) {
	l := schema.Languages

	query := fmt.Sprintf(`
		SELECT %s, %s, %s FROM %s ORDER BY %s ASC
	`, l.ID, l.Code, l.Name, l.Table, l.Code)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "reference.ListLanguages")
	}
	defer rows.Close()

	var languages []*Language
	for rows.Next() {
		language := &Language{}
		if err := rows.Scan(&language.ID, &language.Code, &language.Name); err != nil {
			return nil, dberr.Wrap(err, "reference.ListLanguages.scan")
		}
		languages = append(languages, language)
	}

	return languages, dberr.Wrap(rows.Err(), "reference.ListLanguages.rows")
}

// ListCategories retrieves the full taxonomy ordered by name.
func (repository *repository) ListCategories(ctx context.Context) ([]*Category, error) {
	c := schema.Categories

	query := fmt.Sprintf(`
		SELECT %s, %s, COALESCE(%s, '') FROM %s ORDER BY %s ASC
	`, c.ID, c.Name, c.Description, c.Table, c.Name)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "reference.ListCategories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, dberr.Wrap(err, "reference.ListCategories.scan")
		}
		categories = append(categories, category)
	}

	return categories, dberr.Wrap(rows.Err(), "reference.ListCategories.rows")
}
