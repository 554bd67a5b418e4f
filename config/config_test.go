// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observatorio/geonoticias/spatial"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{EnvConfigPath, EnvOpenCageAPIKey, EnvGoogleAPIKey, EnvAnthropicKey, EnvRedisURL} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "geonoticias.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("db", "geocode_cache.json"), cfg.CachePath())
	assert.Equal(t, filepath.Join("db", "geonoticias.duckdb"), cfg.DatabasePath())
}

func TestLoadFileOverDefaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
db_path: /var/lib/geonoticias
geocoding:
  provider: Google
  min_confidence: 8
  allowed_countries: [AR, UY]
  timeout: 3s
  boxes:
    UY: {min_lat: -35.0, max_lat: -30.0, min_lng: -58.5, max_lng: -53.0}
cache:
  backend: duckdb
extraction:
  ignore_words: [Gobierno]
enrich:
  mode: all
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/geonoticias", cfg.DBPath)
	assert.Equal(t, ProviderGoogle, cfg.Geocoding.Provider)
	assert.Equal(t, 8, cfg.Geocoding.MinConfidence)
	assert.Equal(t, []string{"ar", "uy"}, cfg.Geocoding.AllowedCountries)
	assert.Equal(t, 3*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, spatial.BoundingBox{MinLat: -35, MaxLat: -30, MinLng: -58.5, MaxLng: -53}, cfg.Geocoding.Boxes["uy"])
	assert.Equal(t, CacheDuckDB, cfg.Cache.Backend)
	assert.Equal(t, []string{"Gobierno"}, cfg.Extraction.IgnoreWords)
	assert.Equal(t, "all", cfg.Enrich.Mode)

	// untouched keys keep their defaults
	assert.Equal(t, "es", cfg.Geocoding.Language)
	assert.Equal(t, "ar", cfg.Geocoding.DefaultCountry)
	assert.Equal(t, 4, cfg.Enrich.Workers)
	assert.InDelta(t, 1.0, cfg.Geocoding.RatePerSecond, 0)
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenCageAPIKey, "oc-env")
	t.Setenv(EnvGoogleAPIKey, "g-env")
	t.Setenv(EnvAnthropicKey, "sk-env")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")

	path := writeConfig(t, `
geocoding:
  opencage_api_key: oc-file
cache:
  backend: redis
ai:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "oc-env", cfg.Geocoding.OpenCageAPIKey)
	assert.Equal(t, "g-env", cfg.Geocoding.GoogleAPIKey)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Cache.RedisURL)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "geocoding:\n  min_confidense: 7\n"))
	require.ErrorContains(t, err, "min_confidense")

	_, err = Load(writeConfig(t, "geocoding: [1, 2"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "geocoding:\n  min_confidence: 11\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/geonoticias.yaml")

	assert.Equal(t, "custom.yaml", Path("custom.yaml"))
	assert.Equal(t, "/etc/geonoticias.yaml", Path(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"provider", func(c *Config) { c.Geocoding.Provider = "nominatim" }, "geocoding.provider"},
		{"negative threshold", func(c *Config) { c.Geocoding.MinConfidence = -1 }, "min_confidence"},
		{"timeout", func(c *Config) { c.Geocoding.Timeout = 0 }, "timeout"},
		{"rate", func(c *Config) { c.Geocoding.RatePerSecond = -2 }, "rate_per_second"},
		{"country format", func(c *Config) { c.Geocoding.AllowedCountries = []string{"arg"} }, "two letter"},
		{"unknown country", func(c *Config) { c.Geocoding.DefaultCountry = "zz" }, `unknown country "zz"`},
		{"inverted box", func(c *Config) {
			c.Geocoding.Boxes = map[string]spatial.BoundingBox{"ar": {MinLat: -20, MaxLat: -50, MinLng: -70, MaxLng: -50}}
		}, "geocoding.boxes[ar]"},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }, "cache.redis_url"},
		{"mode", func(c *Config) { c.Enrich.Mode = "some" }, "enrich.mode"},
		{"workers", func(c *Config) { c.Enrich.Workers = -1 }, "enrich.workers"},
		{"ai without key", func(c *Config) { c.AI.Enabled = true }, "ai.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateDefersCountriesToGazetteerFile(t *testing.T) {
	cfg := Default()
	cfg.Extraction.GazetteerFile = "extra.json"
	cfg.Geocoding.AllowedCountries = append(cfg.Geocoding.AllowedCountries, "zz")

	assert.NoError(t, cfg.Validate())
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Geocoding.Provider = "x"
	cfg.Cache.Backend = "y"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "geocoding.provider")
	assert.ErrorContains(t, err, "cache.backend")
}
