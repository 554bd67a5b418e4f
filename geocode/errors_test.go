// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"typed", &GeocodingError{Type: ErrorTypeRateLimit, Message: "slow down"}, true},
		{"wrapped typed", fmt.Errorf("rosario: %w", &GeocodingError{Type: ErrorTypeRateLimit}), true},
		{"message", errors.New("opencage returned status 429"), true},
		{"other type", &GeocodingError{Type: ErrorTypeNotFound}, false},
		{"unrelated", errors.New("boom"), false},
	}, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"typed", &GeocodingError{Type: ErrorTypeQuotaExceeded}, true},
		{"google status", errors.New("google maps status: OVER_QUERY_LIMIT"), true},
		{"other type", &GeocodingError{Type: ErrorTypeRateLimit}, false},
		{"unrelated", errors.New("boom"), false},
	}, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"typed", &GeocodingError{Type: ErrorTypeTimeout}, true},
		{"context", fmt.Errorf("calling provider: %v", context.DeadlineExceeded), true},
		{"other type", &GeocodingError{Type: ErrorTypeNetworkError}, false},
		{"unrelated", errors.New("boom"), false},
	}, IsTimeoutError)
}

func TestIsProviderUnavailable(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"nil", nil, false},
		{"network", &GeocodingError{Type: ErrorTypeNetworkError}, true},
		{"timeout", &GeocodingError{Type: ErrorTypeTimeout}, true},
		{"malformed", &GeocodingError{Type: ErrorTypeMalformedResponse}, true},
		{"foreign", errors.New("boom"), true},
		{"not found", &GeocodingError{Type: ErrorTypeNotFound}, false},
		{"low confidence", &GeocodingError{Type: ErrorTypeLowConfidence}, false},
		{"out of bounds", &GeocodingError{Type: ErrorTypeOutOfBounds}, false},
	}, IsProviderUnavailable)
}

func TestIsValidationError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"low confidence", &GeocodingError{Type: ErrorTypeLowConfidence}, true},
		{"out of bounds", fmt.Errorf("x: %w", &GeocodingError{Type: ErrorTypeOutOfBounds}), true},
		{"not found", &GeocodingError{Type: ErrorTypeNotFound}, false},
		{"foreign", errors.New("boom"), false},
	}, IsValidationError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		statusCode int
		wantType   ErrorType
	}{
		{429, ErrorTypeRateLimit},
		{402, ErrorTypeQuotaExceeded},
		{403, ErrorTypeQuotaExceeded},
		{401, ErrorTypeInvalidRequest},
		{400, ErrorTypeInvalidRequest},
		{404, ErrorTypeNotFound},
		{502, ErrorTypeNetworkError},
		{503, ErrorTypeNetworkError},
		{504, ErrorTypeNetworkError},
		{500, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.statusCode), func(t *testing.T) {
			got := ClassifyHTTPError(tt.statusCode, `{"status":{"message":"x"}}`)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPError(%d) type = %v, want %v", tt.statusCode, got.Type, tt.wantType)
			}

			if got.Err == nil {
				t.Errorf("ClassifyHTTPError(%d) should keep the body as cause", tt.statusCode)
			}
		})
	}

	if got := ClassifyHTTPError(500, "  "); got.Err != nil {
		t.Errorf("empty body should not produce a cause, got %v", got.Err)
	}
}

func TestClassifyTransportError(t *testing.T) {
	if got := ClassifyTransportError(fmt.Errorf("get: %w", context.DeadlineExceeded)); got.Type != ErrorTypeTimeout {
		t.Errorf("deadline should be a timeout, got %v", got.Type)
	}

	if got := ClassifyTransportError(errors.New("connection refused")); got.Type != ErrorTypeNetworkError {
		t.Errorf("refused should be a network error, got %v", got.Type)
	}
}

func TestGeocodingErrorUnwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	geoErr := &GeocodingError{
		Type:    ErrorTypeNotFound,
		Message: "ubicación no encontrada",
		Err:     innerErr,
	}

	if !errors.Is(geoErr, innerErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if geoErr.Error() != "ubicación no encontrada: inner error" {
		t.Errorf("unexpected message %q", geoErr.Error())
	}

	if ErrorTypeOutOfBounds.String() != "out_of_bounds" {
		t.Errorf("unexpected name %q", ErrorTypeOutOfBounds.String())
	}
}
