// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package news

import (
	"errors"
	"strings"
	"testing"
)

func TestFindSource(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expectedName string
		expectErr    string
	}{
		{
			name:         "NumericMatch",
			query:        "21",
			expectedName: "La Tercera",
		},
		{
			name:         "StringExactMatch",
			query:        "Infobae",
			expectedName: "Infobae",
		},
		{
			name:         "CaseInsensitiveMatch",
			query:        "eMOL",
			expectedName: "Emol",
		},
		{
			name:         "PrefixMatch",
			query:        "coop",
			expectedName: "Cooperativa",
		},
		{
			name:      "NoMatch",
			query:     "xxx",
			expectErr: "not found",
		},
		{
			name:      "MultipleMatches",
			query:     "La ", // La Nación, La Capital, La Tercera...
			expectErr: "multiple matches",
		},
		{
			name:      "Empty",
			query:     "",
			expectErr: "empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindSource(tc.query)
			if tc.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("FindSource(%q) error = %v, want %q", tc.query, err, tc.expectErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("FindSource(%q) unexpected error: %v", tc.query, err)
			}

			if got.Name != tc.expectedName {
				t.Errorf("FindSource(%q) = %q, want %q", tc.query, got.Name, tc.expectedName)
			}
		})
	}
}

func TestEachSource(t *testing.T) {
	seen := map[string]bool{}

	err := EachSource(func(s Source) error {
		if err := s.Validate(); err != nil {
			return err
		}

		for _, d := range s.Domains {
			if seen[d] {
				t.Errorf("domain %q listed twice", d)
			}

			seen[d] = true
		}

		return nil
	})
	if err != nil {
		t.Fatalf("EachSource() error = %v", err)
	}

	stop := errors.New("stop")
	calls := 0

	err = EachSource(func(Source) error {
		calls++

		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("EachSource() did not stop: err=%v calls=%d", err, calls)
	}
}

func TestCountryForURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.clarin.com/policiales/nota.html", "ar"},
		{"https://clarin.com/x", "ar"},
		{"http://www.lanacion.com.py/pais", "py"},
		{"https://www.lanacion.com.ar/seguridad", "ar"},
		{"www.elmostrador.cl/noticias", "cl"},
		{"https://WWW.EMOL.COM/noticias", "cl"},
		{"https://diariodecuyo.com.ar/nota", "ar"},
		{"https://ejemplo.pe/", "pe"},
		{"https://notclarin.com/x", ""},
		{"https://www.bbc.com/mundo", ""},
		{"", ""},
		{"::::", ""},
	}

	for _, tt := range tests {
		if got := CountryForURL(tt.url); got != tt.want {
			t.Errorf("CountryForURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
