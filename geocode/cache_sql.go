// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLCache stores the cache in a geocode_cache table, usually next to the
// articles in the same DuckDB file.
type SQLCache struct {
	db *sql.DB
}

// NewSQLCache creates the table if needed. The caller owns db.
func NewSQLCache(ctx context.Context, db *sql.DB) (*SQLCache, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			cache_key VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			country_code VARCHAR NOT NULL,
			confidence INTEGER NOT NULL,
			provider VARCHAR NOT NULL,
			resolved_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("creating geocode_cache: %w", err)
	}

	return &SQLCache{db: db}, nil
}

// Get implements Cache.
func (c *SQLCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	r := &Result{}

	err := c.db.QueryRowContext(ctx, `
		SELECT name, lat, lng, country_code, confidence, provider, resolved_at
		FROM geocode_cache
		WHERE cache_key = ?
	`, key).Scan(
		&r.Name,
		&r.Latitude,
		&r.Longitude,
		&r.CountryCode,
		&r.Confidence,
		&r.Provider,
		&r.ResolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading geocode_cache: %w", err)
	}

	return r, true, nil
}

// Set implements Cache.
func (c *SQLCache) Set(ctx context.Context, key string, r Result) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO geocode_cache(
			cache_key, name, lat, lng, country_code, confidence, provider, resolved_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		key,
		r.Name,
		r.Latitude,
		r.Longitude,
		r.CountryCode,
		r.Confidence,
		r.Provider,
		r.ResolvedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing geocode_cache: %w", err)
	}

	return nil
}

// Delete implements Cache.
func (c *SQLCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("deleting from geocode_cache: %w", err)
	}

	return nil
}

// Clear implements Cache.
func (c *SQLCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM geocode_cache`); err != nil {
		return fmt.Errorf("clearing geocode_cache: %w", err)
	}

	return nil
}

// Close implements Cache. The database belongs to the caller.
func (c *SQLCache) Close() error {
	return nil
}

// Len returns the number of cached entries.
func (c *SQLCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}
