// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver

	"github.com/observatorio/geonoticias/config"
	"github.com/observatorio/geonoticias/enrich"
	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/gazetteer"
	"github.com/observatorio/geonoticias/geocode"
	"github.com/observatorio/geonoticias/news"
	"github.com/observatorio/geonoticias/suggest"
	"github.com/observatorio/geonoticias/utils/httputils"
)

// openRepository opens (creating if needed) the database under cfg.DBPath.
func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, news.Repository, error) {
	if err := os.MkdirAll(cfg.DBPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := news.NewRepository(db)
	if err := repo.CreateSchema(ctx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("creating schema: %w", err), db.Close())
	}

	return db, repo, nil
}

func buildGazetteer(cfg *config.Config) (*gazetteer.Gazetteer, error) {
	gaz := gazetteer.Default()

	var err error

	if cfg.Extraction.GazetteerFile != "" {
		if gaz, err = gaz.LoadFile(cfg.Extraction.GazetteerFile); err != nil {
			return nil, err
		}
	}

	if len(cfg.Geocoding.Boxes) > 0 {
		if gaz, err = gaz.WithBoxes(cfg.Geocoding.Boxes); err != nil {
			return nil, fmt.Errorf("geocoding.boxes: %w", err)
		}
	}

	for _, cc := range append([]string{cfg.Geocoding.DefaultCountry}, cfg.Geocoding.AllowedCountries...) {
		if _, ok := gaz.Country(cc); cc != "" && !ok {
			return nil, fmt.Errorf("%w: %q", gazetteer.ErrUnknownCountry, cc)
		}
	}

	return gaz, nil
}

func openCache(ctx context.Context, cfg *config.Config, db *sql.DB) (geocode.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheDuckDB:
		return geocode.NewSQLCache(ctx, db)
	case config.CacheRedis:
		return geocode.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.RedisPrefix)
	default:
		return geocode.OpenFileCache(cfg.CachePath()), nil
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return httputils.NewClient(httputils.ClientOptions{
		Timeout:             cfg.Geocoding.Timeout,
		UserAgent:           userAgent(),
		EnableHTTPTrace:     rootOptions.EnableHTTPTrace,
		EnableHTTPBodyTrace: rootOptions.EnableHTTPBodyTrace,
		Redact:              []string{"key"},
	}, os.Stderr)
}

// newProvider returns nil when geocoding is limited to the cache and the
// gazetteer.
func newProvider(ctx context.Context, cfg *config.Config) (geocode.Provider, error) {
	g := cfg.Geocoding

	switch g.Provider {
	case config.ProviderOpenCage:
		if g.OpenCageAPIKey == "" {
			return nil, fmt.Errorf("OpenCage needs an API key: set geocoding.opencage_api_key or %s", config.EnvOpenCageAPIKey)
		}

		return geocode.NewOpenCage(g.OpenCageAPIKey, g.Endpoint, newHTTPClient(cfg)), nil
	case config.ProviderGoogle:
		key := g.GoogleAPIKey
		if key == "" {
			log.Printf("🔍 No Google Maps key configured, looking it up with application default credentials")

			var err error
			if key, err = geocode.GoogleAPIKeyFromADC(ctx, g.GoogleProject, ""); err != nil {
				return nil, fmt.Errorf("getting Google Maps API key: %w", err)
			}
		}

		return geocode.NewGoogleMaps(key, g.Endpoint, newHTTPClient(cfg)), nil
	default:
		log.Printf("⚠️ No geocoding provider, resolving from cache and gazetteer only")

		return nil, nil
	}
}

// pipeline holds everything a command needs to enrich articles.
type pipeline struct {
	db        *sql.DB
	repo      news.Repository
	gaz       *gazetteer.Gazetteer
	cache     geocode.Cache
	extractor *extract.Extractor
	resolver  *geocode.Resolver
	suggester suggest.Source
	orch      *enrich.Orchestrator
}

// newPipeline wires the whole pipeline from cfg. withProvider false skips
// the provider (and its credentials), for commands that only touch the cache.
func newPipeline(ctx context.Context, cfg *config.Config, withProvider bool) (*pipeline, error) {
	p := &pipeline{}

	var err error

	if p.gaz, err = buildGazetteer(cfg); err != nil {
		return nil, err
	}

	if p.db, p.repo, err = openRepository(ctx, cfg); err != nil {
		return nil, err
	}

	if p.cache, err = openCache(ctx, cfg, p.db); err != nil {
		return nil, errors.Join(fmt.Errorf("opening geocoding cache: %w", err), p.db.Close())
	}

	var provider geocode.Provider

	if withProvider {
		if provider, err = newProvider(ctx, cfg); err != nil {
			return nil, errors.Join(err, p.Close())
		}
	}

	g := cfg.Geocoding
	p.resolver = geocode.NewResolver(
		p.cache,
		p.gaz,
		provider,
		geocode.NewValidator(p.gaz, g.AllowedCountries, g.MinConfidence),
		geocode.ResolverOptions{
			Language:       g.Language,
			DefaultCountry: g.DefaultCountry,
			Timeout:        g.Timeout,
			RatePerSecond:  g.RatePerSecond,
		},
	)

	p.extractor = extract.New(p.gaz, cfg.Extraction.IgnoreWords...)

	if withProvider && cfg.AI.Enabled {
		p.suggester = suggest.NewClaude(cfg.AI.APIKey, cfg.AI.Model)
	}

	p.orch = enrich.NewOrchestrator(p.extractor, p.resolver, p.repo, p.suggester, enrich.Mode(cfg.Enrich.Mode))

	return p, nil
}

func (p *pipeline) Close() error {
	return errors.Join(p.cache.Close(), p.db.Close())
}
