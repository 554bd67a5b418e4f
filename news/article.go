// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package news holds the articles the pipeline enriches and the locations
// resolved for them.
package news

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/observatorio/geonoticias/spatial"
)

// ErrArticleNotFound is returned when an article id is unknown.
var ErrArticleNotFound = errors.New("article not found")

// Article is a news item as delivered by ingestion. The pipeline only reads
// it.
type Article struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	URL               string    `json:"url,omitempty"`
	PublishedAt       time.Time `json:"published_at"`
	SourceCountryHint string    `json:"source_country_hint,omitempty"`
}

// Validate checks the fields the pipeline depends on.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("article: id must not be empty")
	}

	if h := a.SourceCountryHint; h != "" && len(h) != 2 {
		return fmt.Errorf("article %q: invalid country hint %q", a.ID, h)
	}

	return nil
}

// ResolvedLocation is a geocoded place persisted for an article.
type ResolvedLocation struct {
	ArticleID   string        `json:"article_id"`
	Name        string        `json:"name"`
	Point       spatial.Point `json:"point"`
	CountryCode string        `json:"country_code"`
	IsPrimary   bool          `json:"is_primary"`
	Confidence  int           `json:"confidence"`
	Provider    string        `json:"provider"`
	CreatedAt   time.Time     `json:"created_at"`
	H3Res4      int64         `json:"-"`
	H3Res6      int64         `json:"-"`
	H3Res8      int64         `json:"-"`
}

func (l *ResolvedLocation) computeH3() error {
	cells, err := spatial.Cells(l.Point)
	if err != nil {
		return err
	}

	l.H3Res4, l.H3Res6, l.H3Res8 = cells[0], cells[1], cells[2]

	return nil
}

// ReadArticles decodes a JSON array of articles. Missing country hints are
// derived from the article URL.
func ReadArticles(r io.Reader) ([]*Article, error) {
	var articles []*Article
	if err := json.NewDecoder(r).Decode(&articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal articles: %w", err)
	}

	var errs []error

	for i, a := range articles {
		if a == nil {
			errs = append(errs, fmt.Errorf("article #%d is null", i))

			continue
		}

		a.SourceCountryHint = strings.ToLower(strings.TrimSpace(a.SourceCountryHint))
		if a.SourceCountryHint == "" && a.URL != "" {
			a.SourceCountryHint = CountryForURL(a.URL)
		}

		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("article #%d: %w", i, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return articles, nil
}

// LoadArticles reads a JSON file written by the ingestion job.
func LoadArticles(path string) ([]*Article, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading articles file: %w", err)
	}
	defer f.Close()

	return ReadArticles(f)
}
