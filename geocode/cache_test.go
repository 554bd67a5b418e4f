// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marDelPlata = Result{
	Name:        "Mar del Plata",
	Latitude:    -38.0055,
	Longitude:   -57.5426,
	CountryCode: "ar",
	Confidence:  10,
	Provider:    "gazetteer",
	ResolvedAt:  time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC),
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "mar del plata", CacheKey("  Mar del  Plata ", ""))
	assert.Equal(t, "cordoba|ar", CacheKey("Córdoba", "AR"))
	assert.NotEqual(t, CacheKey("Rosario", ""), CacheKey("Rosario", "ar"))
}

func cacheBackends(t *testing.T) map[string]Cache {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlCache, err := NewSQLCache(context.Background(), db)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisCache := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() { redisCache.Close() })

	return map[string]Cache{
		"file":   OpenFileCache(filepath.Join(t.TempDir(), "cache.json")),
		"duckdb": sqlCache,
		"redis":  redisCache,
	}
}

func TestCacheBackends(t *testing.T) {
	ctx := context.Background()

	for name, c := range cacheBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "mar del plata")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "mar del plata", marDelPlata))
			require.NoError(t, c.Set(ctx, "rosario|ar", Result{Name: "Rosario", CountryCode: "ar", ResolvedAt: marDelPlata.ResolvedAt}))

			got, ok, err := c.Get(ctx, "mar del plata")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, marDelPlata.Name, got.Name)
			assert.InDelta(t, marDelPlata.Latitude, got.Latitude, 1e-9)
			assert.InDelta(t, marDelPlata.Longitude, got.Longitude, 1e-9)
			assert.Equal(t, "ar", got.CountryCode)
			assert.Equal(t, 10, got.Confidence)
			assert.Equal(t, "gazetteer", got.Provider)
			assert.True(t, marDelPlata.ResolvedAt.Equal(got.ResolvedAt), "resolved_at %v", got.ResolvedAt)

			// overwrite
			updated := marDelPlata
			updated.Confidence = 9
			require.NoError(t, c.Set(ctx, "mar del plata", updated))
			got, _, err = c.Get(ctx, "mar del plata")
			require.NoError(t, err)
			assert.Equal(t, 9, got.Confidence)

			require.NoError(t, c.Delete(ctx, "mar del plata"))
			_, ok, err = c.Get(ctx, "mar del plata")
			require.NoError(t, err)
			assert.False(t, ok)

			// deleting a missing key is fine
			require.NoError(t, c.Delete(ctx, "nowhere"))

			_, ok, err = c.Get(ctx, "rosario|ar")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, c.Clear(ctx))
			_, ok, err = c.Get(ctx, "rosario|ar")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileCacheSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	c := OpenFileCache(path)
	require.NoError(t, c.Set(ctx, "mar del plata", marDelPlata))
	require.NoError(t, c.Close())

	reopened := OpenFileCache(path)
	assert.Equal(t, 1, reopened.Len())

	got, ok, err := reopened.Get(ctx, "mar del plata")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mar del Plata", got.Name)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileCacheCorruptStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	c := OpenFileCache(path)
	assert.Equal(t, 0, c.Len())

	// the next write replaces the corrupt file
	require.NoError(t, c.Set(ctx, "rosario", marDelPlata))
	assert.Equal(t, 1, OpenFileCache(path).Len())
}

func TestFileCacheEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	assert.Equal(t, 0, OpenFileCache(path).Len())
}

func TestRedisCacheClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, "redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, mr.Set("other:key", "x"))

	for i := range 20 {
		require.NoError(t, c.Set(ctx, CacheKey("lugar", "")+string(rune('a'+i)), marDelPlata))
	}

	require.NoError(t, c.Clear(ctx))

	assert.True(t, mr.Exists("other:key"))
	assert.Len(t, mr.Keys(), 1)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	defer c.Close()

	require.NoError(t, mr.Set("test:rosario", "{oops"))

	_, ok, err := c.Get(ctx, "rosario")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "http://nope", "")
	assert.Error(t, err)
}
