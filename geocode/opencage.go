// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultOpenCageEndpoint is the forward geocoding endpoint.
const DefaultOpenCageEndpoint = "https://api.opencagedata.com/geocode/v1/json"

// OpenCage uses the OpenCage Geocoding API.
type OpenCage struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewOpenCage creates a new OpenCage provider. A nil client gets a 10s timeout.
func NewOpenCage(apiKey, endpoint string, client *http.Client) *OpenCage {
	if endpoint == "" {
		endpoint = DefaultOpenCageEndpoint
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &OpenCage{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: client,
	}
}

// Name implements Provider.
func (o *OpenCage) Name() string {
	return "opencage"
}

type openCageResponse struct {
	Results []struct {
		Confidence int `json:"confidence"` // 1-10, 0 when unknown
		Components struct {
			CountryCode string `json:"country_code"`
			Type        string `json:"_type"`
		} `json:"components"`
		Formatted string `json:"formatted"`
		Geometry  *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// Geocode implements Provider.
func (o *OpenCage) Geocode(ctx context.Context, q Query) (*Result, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("key", o.apiKey)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")

	if q.Language != "" {
		params.Set("language", q.Language)
	}

	if len(q.Countries) > 0 {
		params.Set("countrycode", strings.Join(q.Countries, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "armando request", Err: err}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var ocResp openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "decoding opencage response", Err: err}
	}

	if ocResp.Status.Code != 0 && ocResp.Status.Code != http.StatusOK {
		return nil, ClassifyHTTPError(ocResp.Status.Code, ocResp.Status.Message)
	}

	if len(ocResp.Results) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("sin resultados para %q", q.Text),
		}
	}

	result := ocResp.Results[0]
	if result.Geometry == nil || result.Components.CountryCode == "" {
		return nil, &GeocodingError{
			Type:    ErrorTypeMalformedResponse,
			Message: fmt.Sprintf("resultado incompleto para %q", q.Text),
		}
	}

	return &Result{
		Name:        result.Formatted,
		Latitude:    result.Geometry.Lat,
		Longitude:   result.Geometry.Lng,
		CountryCode: strings.ToLower(result.Components.CountryCode),
		Confidence:  min(max(result.Confidence, 0), MaxConfidence),
		Provider:    o.Name(),
	}, nil
}
