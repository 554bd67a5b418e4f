// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosarioOpenCage = `{
	"results": [{
		"confidence": 7,
		"components": {"_type": "city", "country_code": "AR"},
		"formatted": "Rosario, Municipio de Rosario, Argentina",
		"geometry": {"lat": -32.9595, "lng": -60.6615}
	}],
	"status": {"code": 200, "message": "OK"},
	"total_results": 1
}`

func TestOpenCageGeocode(t *testing.T) {
	var got *http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, rosarioOpenCage)
	}))
	defer srv.Close()

	oc := NewOpenCage("test-key", srv.URL, srv.Client())

	res, err := oc.Geocode(context.Background(), Query{
		Text:      "Rosario",
		Countries: []string{"ar", "uy"},
		Language:  "es",
	})
	require.NoError(t, err)

	assert.Equal(t, "Rosario, Municipio de Rosario, Argentina", res.Name)
	assert.InDelta(t, -32.9595, res.Latitude, 1e-9)
	assert.InDelta(t, -60.6615, res.Longitude, 1e-9)
	assert.Equal(t, "ar", res.CountryCode)
	assert.Equal(t, 7, res.Confidence)
	assert.Equal(t, "opencage", res.Provider)

	q := got.URL.Query()
	assert.Equal(t, "Rosario", q.Get("q"))
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "1", q.Get("no_annotations"))
	assert.Equal(t, "es", q.Get("language"))
	assert.Equal(t, "ar,uy", q.Get("countrycode"))
}

func TestOpenCageErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{"no results", http.StatusOK, `{"results": [], "status": {"code": 200, "message": "OK"}}`, ErrorTypeNotFound},
		{"quota", http.StatusPaymentRequired, `{"status": {"code": 402, "message": "quota exceeded"}}`, ErrorTypeQuotaExceeded},
		{"rate limit", http.StatusTooManyRequests, `{}`, ErrorTypeRateLimit},
		{"bad key", http.StatusUnauthorized, `{}`, ErrorTypeInvalidRequest},
		{"malformed json", http.StatusOK, `{"results": [`, ErrorTypeMalformedResponse},
		{"missing geometry", http.StatusOK, `{"results": [{"confidence": 9, "components": {"country_code": "ar"}}]}`, ErrorTypeMalformedResponse},
		{"server error", http.StatusServiceUnavailable, ``, ErrorTypeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewOpenCage("k", srv.URL, srv.Client()).Geocode(context.Background(), Query{Text: "Rosario"})
			require.Error(t, err)
			assert.Equal(t, tt.wantType, TypeOf(err), err.Error())
		})
	}
}

func TestOpenCageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOpenCage("k", srv.URL, srv.Client()).Geocode(ctx, Query{Text: "Rosario"})
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err), err.Error())
}
