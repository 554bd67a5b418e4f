// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"testing"

	"github.com/observatorio/geonoticias/gazetteer"
)

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(gazetteer.Default(), []string{"ar", "cl", "uy", "py", "bo"}, 6)

	tests := []struct {
		name     string
		result   Result
		wantType ErrorType
		wantErr  bool
	}{
		{
			name:   "mar del plata",
			result: Result{Latitude: -38.0055, Longitude: -57.5426, CountryCode: "ar", Confidence: 8},
		},
		{
			name:   "montevideo at threshold",
			result: Result{Latitude: -34.9011, Longitude: -56.1645, CountryCode: "uy", Confidence: 6},
		},
		{
			name:     "below threshold",
			result:   Result{Latitude: -34.9011, Longitude: -56.1645, CountryCode: "uy", Confidence: 5},
			wantErr:  true,
			wantType: ErrorTypeLowConfidence,
		},
		{
			name:     "paris tagged as argentina",
			result:   Result{Latitude: 48.8566, Longitude: 2.3522, CountryCode: "ar", Confidence: 9},
			wantErr:  true,
			wantType: ErrorTypeOutOfBounds,
		},
		{
			name:     "paris",
			result:   Result{Latitude: 48.8566, Longitude: 2.3522, CountryCode: "fr", Confidence: 9},
			wantErr:  true,
			wantType: ErrorTypeOutOfBounds,
		},
		{
			name:     "country with box but not allowed",
			result:   Result{Latitude: 19.4326, Longitude: -99.1332, CountryCode: "mx", Confidence: 9},
			wantErr:  true,
			wantType: ErrorTypeOutOfBounds,
		},
		{
			name:     "latitude too high",
			result:   Result{Latitude: 91, Longitude: -56, CountryCode: "uy", Confidence: 9},
			wantErr:  true,
			wantType: ErrorTypeOutOfBounds,
		},
		{
			name:     "wrong hemisphere",
			result:   Result{Latitude: 34.9011, Longitude: 56.1645, CountryCode: "uy", Confidence: 9},
			wantErr:  true,
			wantType: ErrorTypeOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr && TypeOf(err) != tt.wantType {
				t.Errorf("Check() type = %v, want %v", TypeOf(err), tt.wantType)
			}
		})
	}
}

func TestValidatorWithoutAllowList(t *testing.T) {
	v := NewValidator(gazetteer.Default(), nil, 0)

	if err := v.Check(Result{Latitude: 19.4326, Longitude: -99.1332, CountryCode: "mx"}); err != nil {
		t.Errorf("mexico has a box and should be accepted: %v", err)
	}

	if err := v.Check(Result{Latitude: 48.8566, Longitude: 2.3522, CountryCode: "fr"}); TypeOf(err) != ErrorTypeOutOfBounds {
		t.Errorf("unknown countries are rejected, got %v", err)
	}
}
