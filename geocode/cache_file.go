// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileCache keeps the whole cache in memory and rewrites a JSON file on every
// mutation. The mutex covers the read-modify-write cycle, so concurrent
// writers never persist a stale snapshot.
type FileCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]Result
}

// OpenFileCache loads path. A missing file is an empty cache; an unreadable
// or corrupt one is logged and also treated as empty, it gets overwritten on
// the next write.
func OpenFileCache(path string) *FileCache {
	c := &FileCache{
		path:    path,
		entries: make(map[string]Result),
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ geocoding cache %s unreadable, starting empty: %v", path, err)
		}

		return c
	}

	if len(data) == 0 {
		return c
	}

	entries := make(map[string]Result)
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ geocoding cache %s is corrupt, starting empty: %v", path, err)

		return c
	}

	c.entries = entries

	return c
}

// Len returns the number of entries.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Get implements Cache.
func (c *FileCache) Get(_ context.Context, key string) (*Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	return &r, true, nil
}

// Set implements Cache.
func (c *FileCache) Set(_ context.Context, key string, r Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = r

	return c.persist()
}

// Delete implements Cache.
func (c *FileCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return nil
	}

	delete(c.entries, key)

	return c.persist()
}

// Clear implements Cache.
func (c *FileCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Result)

	return c.persist()
}

// Close implements Cache. Every mutation is already on disk.
func (c *FileCache) Close() error {
	return nil
}

// persist writes to a temporary file and renames it over the cache, so a
// crash mid-write leaves the previous version. Must be called with mu held.
func (c *FileCache) persist() error {
	output, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal geocoding cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("setting up geocoding cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write geocoding cache: %w", err)
	}

	if _, err = tmp.Write(output); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write geocoding cache: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write geocoding cache: %w", err)
	}

	if err = os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace geocoding cache: %w", err)
	}

	return nil
}
