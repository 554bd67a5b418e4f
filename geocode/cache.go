// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"strings"

	"github.com/observatorio/geonoticias/utils/textutils"
)

// Cache maps a query key to a previously resolved result. Entries never
// expire; they are removed explicitly with Delete or Clear. Implementations
// must be safe for concurrent use and durable across restarts.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Set(ctx context.Context, key string, r Result) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// CacheKey is the normalized query, suffixed with "|cc" when a country hint
// narrows it down: "rosario" and "rosario|ar" are different entries.
func CacheKey(query, countryHint string) string {
	key := textutils.Normalize(query)
	if countryHint = strings.ToLower(strings.TrimSpace(countryHint)); countryHint != "" {
		key += "|" + countryHint
	}

	return key
}
