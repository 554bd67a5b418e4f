// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// DefaultGoogleMapsEndpoint is the Geocoding API endpoint.
const DefaultGoogleMapsEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMaps uses Google Maps Geocoding API.
type GoogleMaps struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleMaps creates a new Google Maps provider.
func NewGoogleMaps(apiKey, endpoint string, client *http.Client) *GoogleMaps {
	if endpoint == "" {
		endpoint = DefaultGoogleMapsEndpoint
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &GoogleMaps{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: client,
	}
}

// Name implements Provider.
func (g *GoogleMaps) Name() string {
	return "google_maps"
}

type googleMapsResponse struct {
	Results []struct {
		AddressComponents []struct {
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Google has no numeric confidence. Cities and provinces come back as
// APPROXIMATE, which is what we usually look for, so it maps to the default
// threshold rather than below it.
var googleConfidence = map[string]int{
	"ROOFTOP":            10,
	"RANGE_INTERPOLATED": 9,
	"GEOMETRIC_CENTER":   8,
	"APPROXIMATE":        6,
}

func googleStatusError(status, message string) *GeocodingError {
	msg := fmt.Sprintf("google maps status: %s", status)

	var cause error
	if message != "" {
		cause = errors.New(message)
	}

	switch status {
	case "ZERO_RESULTS":
		return &GeocodingError{Type: ErrorTypeNotFound, Message: msg}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: msg, Err: cause}
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return &GeocodingError{Type: ErrorTypeInvalidRequest, Message: msg, Err: cause}
	case "UNKNOWN_ERROR":
		return &GeocodingError{Type: ErrorTypeNetworkError, Message: msg, Err: cause}
	default:
		return &GeocodingError{Type: ErrorTypeUnknown, Message: msg, Err: cause}
	}
}

// Geocode implements Provider. Google only filters by one country, so the
// allow-list is enforced by the caller; the hint is used as region bias.
func (g *GoogleMaps) Geocode(ctx context.Context, q Query) (*Result, error) {
	params := url.Values{}
	params.Set("address", q.Text)
	params.Set("key", g.apiKey)

	if q.Language != "" {
		params.Set("language", q.Language)
	}

	switch {
	case len(q.Countries) == 1:
		params.Set("components", "country:"+strings.ToUpper(q.Countries[0]))
	case q.CountryHint != "":
		params.Set("region", q.CountryHint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "armando request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "decoding google maps response", Err: err}
	}

	if gmResp.Status != "OK" {
		return nil, googleStatusError(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return nil, googleStatusError("ZERO_RESULTS", "")
	}

	result := gmResp.Results[0]

	var country string

	for _, c := range result.AddressComponents {
		if slices.Contains(c.Types, "country") {
			country = strings.ToLower(c.ShortName)

			break
		}
	}

	if country == "" {
		return nil, &GeocodingError{
			Type:    ErrorTypeMalformedResponse,
			Message: fmt.Sprintf("resultado sin país para %q", q.Text),
		}
	}

	return &Result{
		Name:        result.FormattedAddress,
		Latitude:    result.Geometry.Location.Lat,
		Longitude:   result.Geometry.Location.Lng,
		CountryCode: country,
		Confidence:  googleConfidence[result.Geometry.LocationType],
		Provider:    g.Name(),
	}, nil
}
