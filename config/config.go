// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the geonoticias settings: an optional YAML file
// decoded over the defaults, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/observatorio/geonoticias/enrich"
	"github.com/observatorio/geonoticias/gazetteer"
	"github.com/observatorio/geonoticias/spatial"
	"github.com/observatorio/geonoticias/suggest"
)

// Environment variables read by Load.
const (
	EnvConfigPath     = "GEONOTICIAS_CONFIG"
	EnvOpenCageAPIKey = "OPENCAGE_API_KEY"
	EnvGoogleAPIKey   = "GOOGLE_MAPS_API_KEY"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvRedisURL       = "REDIS_URL"
)

// Providers.
const (
	ProviderOpenCage = "opencage"
	ProviderGoogle   = "google"
	// ProviderNone resolves from the cache and the gazetteer only.
	ProviderNone = "none"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheDuckDB = "duckdb"
	CacheRedis  = "redis"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every tunable of the pipeline.
type Config struct {
	// DBPath is the directory holding the database and the file cache.
	DBPath     string           `yaml:"db_path"`
	Geocoding  GeocodingConfig  `yaml:"geocoding"`
	Cache      CacheConfig      `yaml:"cache"`
	Extraction ExtractionConfig `yaml:"extraction"`
	AI         AIConfig         `yaml:"ai"`
	Enrich     EnrichConfig     `yaml:"enrich"`
}

// GeocodingConfig configures the resolver and its provider.
type GeocodingConfig struct {
	Provider       string `yaml:"provider"`
	OpenCageAPIKey string `yaml:"opencage_api_key"`
	GoogleAPIKey   string `yaml:"google_api_key"`
	// GoogleProject is used to look the key up with Application Default
	// Credentials when GoogleAPIKey is empty.
	GoogleProject string `yaml:"google_project"`
	// Endpoint overrides the provider URL.
	Endpoint         string                         `yaml:"endpoint"`
	Language         string                         `yaml:"language"`
	MinConfidence    int                            `yaml:"min_confidence"`
	AllowedCountries []string                       `yaml:"allowed_countries"`
	DefaultCountry   string                         `yaml:"default_country"`
	Boxes            map[string]spatial.BoundingBox `yaml:"boxes"`
	Timeout          time.Duration                  `yaml:"timeout"`
	RatePerSecond    float64                        `yaml:"rate_per_second"`
}

// CacheConfig selects the geocode cache backend.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	// Path of the file backend, defaults to DBPath/geocode_cache.json.
	Path        string `yaml:"path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type ExtractionConfig struct {
	IgnoreWords   []string `yaml:"ignore_words"`
	GazetteerFile string   `yaml:"gazetteer_file"`
}

type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

type EnrichConfig struct {
	Workers int    `yaml:"workers"`
	Mode    string `yaml:"mode"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		DBPath: "db",
		Geocoding: GeocodingConfig{
			Provider:         ProviderOpenCage,
			Language:         "es",
			MinConfidence:    6,
			AllowedCountries: []string{"ar", "cl", "uy", "py", "bo"},
			DefaultCountry:   "ar",
			Timeout:          10 * time.Second,
			RatePerSecond:    1,
		},
		Cache: CacheConfig{
			Backend:     CacheFile,
			RedisPrefix: "geocode:",
		},
		AI: AIConfig{
			Model: suggest.DefaultModel,
		},
		Enrich: EnrichConfig{
			Workers: 4,
			Mode:    string(enrich.ModePrimary),
		},
	}
}

// Path returns path, or the one named by GEONOTICIAS_CONFIG when empty.
func Path(path string) string {
	if path != "" {
		return path
	}

	return os.Getenv(EnvConfigPath)
}

// Load reads the YAML file at path (none when empty) over the defaults,
// applies the environment overrides and validates the result. Unknown keys
// are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path) // #nosec G304 - path is provided by admin
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)

		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOpenCageAPIKey); v != "" {
		c.Geocoding.OpenCageAPIKey = v
	}

	if v := os.Getenv(EnvGoogleAPIKey); v != "" {
		c.Geocoding.GoogleAPIKey = v
	}

	if v := os.Getenv(EnvAnthropicKey); v != "" {
		c.AI.APIKey = v
	}

	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
}

func (c *Config) normalize() {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	c.Geocoding.Provider = lower(c.Geocoding.Provider)
	c.Geocoding.DefaultCountry = lower(c.Geocoding.DefaultCountry)
	c.Cache.Backend = lower(c.Cache.Backend)
	c.Enrich.Mode = lower(c.Enrich.Mode)

	for i, cc := range c.Geocoding.AllowedCountries {
		c.Geocoding.AllowedCountries[i] = lower(cc)
	}

	if len(c.Geocoding.Boxes) > 0 {
		boxes := make(map[string]spatial.BoundingBox, len(c.Geocoding.Boxes))
		for cc, b := range c.Geocoding.Boxes {
			boxes[lower(cc)] = b
		}

		c.Geocoding.Boxes = boxes
	}
}

// CachePath is where the file backend keeps its entries.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}

	return filepath.Join(c.DBPath, "geocode_cache.json")
}

// DatabasePath is the DuckDB file holding articles and locations.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DBPath, "geonoticias.duckdb")
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	g := c.Geocoding

	switch g.Provider {
	case ProviderOpenCage, ProviderGoogle, ProviderNone:
	default:
		invalid("geocoding.provider %q (want opencage, google or none)", g.Provider)
	}

	if g.MinConfidence < 0 || g.MinConfidence > 10 {
		invalid("geocoding.min_confidence %d out of range 0-10", g.MinConfidence)
	}

	if g.Timeout <= 0 {
		invalid("geocoding.timeout must be positive, got %s", g.Timeout)
	}

	if g.RatePerSecond < 0 {
		invalid("geocoding.rate_per_second must not be negative, got %g", g.RatePerSecond)
	}

	// countries added by an extra gazetteer file are only known later
	checkCountry := func(field, cc string) {
		if len(cc) != 2 {
			invalid("%s %q is not a two letter country code", field, cc)

			return
		}

		if c.Extraction.GazetteerFile != "" {
			return
		}

		if _, ok := gazetteer.Default().Country(cc); !ok {
			invalid("%s: unknown country %q", field, cc)
		}
	}

	for _, cc := range g.AllowedCountries {
		checkCountry("geocoding.allowed_countries", cc)
	}

	if g.DefaultCountry != "" {
		checkCountry("geocoding.default_country", g.DefaultCountry)
	}

	for cc, box := range g.Boxes {
		checkCountry("geocoding.boxes", cc)

		if err := box.Validate(); err != nil {
			invalid("geocoding.boxes[%s]: %v", cc, err)
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheDuckDB:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			invalid("cache.redis_url is required by the redis backend (or set %s)", EnvRedisURL)
		}
	default:
		invalid("cache.backend %q (want file, duckdb or redis)", c.Cache.Backend)
	}

	if !enrich.Mode(c.Enrich.Mode).Valid() {
		invalid("enrich.mode %q (want primary or all)", c.Enrich.Mode)
	}

	if c.Enrich.Workers < 0 {
		invalid("enrich.workers must not be negative, got %d", c.Enrich.Workers)
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		invalid("ai.enabled requires ai.api_key (or set %s)", EnvAnthropicKey)
	}

	return errors.Join(errs...)
}
