// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ArticleFilter selects the articles of a batch run.
type ArticleFilter struct {
	// OnlyUnresolved skips articles that already have locations.
	OnlyUnresolved bool
	// Since keeps articles published at or after it. Zero means no limit.
	Since time.Time
	// Limit caps the number of articles. Zero means all.
	Limit int
}

// Repository is the persistence of articles and their resolved locations.
type Repository interface {
	// CreateSchema creates the tables if they do not exist
	CreateSchema(ctx context.Context) error

	// SaveArticles inserts or replaces articles, returning how many were written
	SaveArticles(ctx context.Context, articles []*Article) (int, error)

	// GetArticle returns ErrArticleNotFound for unknown ids
	GetArticle(ctx context.Context, id string) (*Article, error)

	// ListArticles returns the articles matching filter, newest first
	ListArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// ReplaceLocations deletes the locations of an article and inserts the
	// given ones in a single transaction
	ReplaceLocations(ctx context.Context, articleID string, locations []ResolvedLocation) error

	// ListLocations returns the locations of an article, primary first.
	// An empty id lists every article's locations
	ListLocations(ctx context.Context, articleID string) ([]ResolvedLocation, error)

	// CountLocations returns the total number of persisted locations
	CountLocations(ctx context.Context) (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a repository on top of a DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) CreateSchema(ctx context.Context) error {
	// article_id has no foreign key: DuckDB refuses to replace a referenced
	// article row, and articles are re-imported with INSERT OR REPLACE.
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			body TEXT NOT NULL,
			url VARCHAR,
			published_at TIMESTAMP,
			source_country_hint VARCHAR
		);

		CREATE SEQUENCE IF NOT EXISTS article_locations_seq START 1;

		CREATE TABLE IF NOT EXISTS article_locations (
			id INTEGER PRIMARY KEY DEFAULT nextval('article_locations_seq'),
			article_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			country_code VARCHAR NOT NULL,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			confidence INTEGER NOT NULL,
			provider VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res4 BIGINT,
			h3_res6 BIGINT,
			h3_res8 BIGINT
		);

		CREATE INDEX IF NOT EXISTS article_locations_article_idx ON article_locations(article_id);
	`)

	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func (r *sqlRepository) SaveArticles(ctx context.Context, articles []*Article) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO articles(id, title, body, url, published_at, source_country_hint)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Join(err, tx.Rollback())
	}
	defer stmt.Close()

	n := 0

	for _, a := range articles {
		if err := a.Validate(); err != nil {
			return 0, errors.Join(err, tx.Rollback())
		}

		_, err := stmt.ExecContext(ctx,
			a.ID,
			a.Title,
			a.Body,
			nullString(a.URL),
			nullTime(a.PublishedAt),
			nullString(a.SourceCountryHint),
		)
		if err != nil {
			return 0, errors.Join(fmt.Errorf("saving article %q: %w", a.ID, err), tx.Rollback())
		}

		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return n, nil
}

const articleSelect = `
	SELECT a.id, a.title, a.body, a.url, a.published_at, a.source_country_hint
	FROM articles a
`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	a := &Article{}

	var (
		url, hint   sql.NullString
		publishedAt sql.NullTime
	)

	if err := row.Scan(&a.ID, &a.Title, &a.Body, &url, &publishedAt, &hint); err != nil {
		return nil, err
	}

	a.URL = url.String
	a.SourceCountryHint = hint.String

	if publishedAt.Valid {
		a.PublishedAt = publishedAt.Time
	}

	return a, nil
}

func (r *sqlRepository) GetArticle(ctx context.Context, id string) (*Article, error) {
	a, err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrArticleNotFound, id)
	}

	return a, err
}

func (r *sqlRepository) ListArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error) {
	query := articleSelect + ` WHERE 1 = 1`

	args := []any{}

	if filter.OnlyUnresolved {
		query += ` AND NOT EXISTS (SELECT 1 FROM article_locations l WHERE l.article_id = a.id)`
	}

	if !filter.Since.IsZero() {
		query += ` AND a.published_at >= ?`

		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY a.published_at DESC NULLS LAST, a.id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`

		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*Article

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}

		articles = append(articles, a)
	}

	return articles, rows.Err()
}

func (r *sqlRepository) ReplaceLocations(ctx context.Context, articleID string, locations []ResolvedLocation) error {
	primaries := 0

	for _, l := range locations {
		if l.IsPrimary {
			primaries++
		}
	}

	if primaries > 1 {
		return fmt.Errorf("article %q: %d primary locations", articleID, primaries)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM article_locations WHERE article_id = ?`, articleID); err != nil {
		return errors.Join(fmt.Errorf("deleting locations of %q: %w", articleID, err), tx.Rollback())
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO article_locations(
			article_id,
			name,
			lat,
			lng,
			country_code,
			is_primary,
			confidence,
			provider,
			created_at,
			h3_res4,
			h3_res6,
			h3_res8
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	defer stmt.Close()

	now := time.Now().UTC()

	for i := range locations {
		l := locations[i]

		// validated inside the transaction so a bad row undoes the delete too
		if err = l.Point.Validate(); err != nil {
			return errors.Join(fmt.Errorf("location %q of %q: %w", l.Name, articleID, err), tx.Rollback())
		}

		if err = l.computeH3(); err != nil {
			return errors.Join(err, tx.Rollback())
		}

		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}

		_, err = stmt.ExecContext(ctx,
			articleID,
			l.Name,
			l.Point.Lat,
			l.Point.Lng,
			l.CountryCode,
			l.IsPrimary,
			l.Confidence,
			l.Provider,
			l.CreatedAt.UTC(),
			l.H3Res4,
			l.H3Res6,
			l.H3Res8,
		)
		if err != nil {
			return errors.Join(fmt.Errorf("inserting location %q of %q: %w", l.Name, articleID, err), tx.Rollback())
		}
	}

	return tx.Commit()
}

func (r *sqlRepository) ListLocations(ctx context.Context, articleID string) ([]ResolvedLocation, error) {
	query := `
		SELECT article_id, name, lat, lng, country_code, is_primary, confidence, provider,
		       created_at, h3_res4, h3_res6, h3_res8
		FROM article_locations
	`

	args := []any{}

	if articleID != "" {
		query += ` WHERE article_id = ?`

		args = append(args, articleID)
	}

	query += ` ORDER BY article_id, is_primary DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []ResolvedLocation

	for rows.Next() {
		var (
			l                      ResolvedLocation
			h3Res4, h3Res6, h3Res8 sql.NullInt64
		)

		err := rows.Scan(
			&l.ArticleID, &l.Name, &l.Point.Lat, &l.Point.Lng,
			&l.CountryCode, &l.IsPrimary, &l.Confidence, &l.Provider,
			&l.CreatedAt, &h3Res4, &h3Res6, &h3Res8,
		)
		if err != nil {
			return nil, err
		}

		l.H3Res4, l.H3Res6, l.H3Res8 = h3Res4.Int64, h3Res6.Int64, h3Res8.Int64

		ret = append(ret, l)
	}

	return ret, rows.Err()
}

func (r *sqlRepository) CountLocations(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM article_locations").Scan(&count)

	return count, err
}
