// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrLatitudeRange  = errors.New("latitud fuera de rango [-90, 90]")
	ErrLongitudeRange = errors.New("longitud fuera de rango [-180, 180]")
	ErrNotANumber     = errors.New("coordenada no numérica")
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Validate checks the point against the global coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrNotANumber
	}

	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: %f", ErrLatitudeRange, p.Lat)
	}

	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: %f", ErrLongitudeRange, p.Lng)
	}

	return nil
}

// Round returns the point with both coordinates rounded to 6 decimal places
// (about 11cm), which is the precision we store.
func (p Point) Round() Point {
	return Point{Lat: round6(p.Lat), Lng: round6(p.Lng)}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// BoundingBox is a rectangular lat/lng range. Boxes never cross the
// antimeridian for the countries we handle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MinLng float64 `json:"min_lng" yaml:"min_lng"`
	MaxLng float64 `json:"max_lng" yaml:"max_lng"`
}

// Contains reports whether p lies inside the box, borders included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Validate checks that the box is well formed.
func (b BoundingBox) Validate() error {
	if err := (Point{Lat: b.MinLat, Lng: b.MinLng}).Validate(); err != nil {
		return err
	}

	if err := (Point{Lat: b.MaxLat, Lng: b.MaxLng}).Validate(); err != nil {
		return err
	}

	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return fmt.Errorf("bounding box invertida: %+v", b)
	}

	return nil
}
