// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves candidate place names to coordinates: cache first,
// then the gazetteer, then an external provider, with validation of every
// result against a confidence threshold and per-country bounding boxes.
package geocode

import (
	"context"
	"time"

	"github.com/observatorio/geonoticias/spatial"
)

// MaxConfidence is the top of the 0-10 confidence scale.
const MaxConfidence = 10

// Result is a geocoded and validated location.
type Result struct {
	Name        string    `json:"name"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lng"`
	CountryCode string    `json:"country_code"`
	Confidence  int       `json:"confidence"`
	Provider    string    `json:"provider"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// Point returns the coordinates of the result.
func (r Result) Point() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// Query is what providers receive.
type Query struct {
	// Text is the free-form query ("Rosario" or "Rosario, Argentina").
	Text string
	// Countries restricts results to these ISO codes (lowercase).
	Countries []string
	// CountryHint biases results when the provider supports it.
	CountryHint string
	// Language of the returned names.
	Language string
}

// Provider is an external geocoding service. Implementations return a
// *GeocodingError of type ErrorTypeNotFound when there are no results.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, q Query) (*Result, error)
}
