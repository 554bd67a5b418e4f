// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// GeocodingError representa errores específicos de geocodificación.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType define tipos de errores de geocodificación.
type ErrorType int

const (
	// ErrorTypeUnknown error desconocido.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit límite de tasa alcanzado.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded cuota excedida.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout timeout de conexión.
	ErrorTypeTimeout
	// ErrorTypeNotFound ubicación no encontrada.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest request inválido o clave rechazada.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError error de red.
	ErrorTypeNetworkError
	// ErrorTypeMalformedResponse respuesta que no se pudo interpretar.
	ErrorTypeMalformedResponse
	// ErrorTypeLowConfidence el proveedor respondió con confianza insuficiente.
	ErrorTypeLowConfidence
	// ErrorTypeOutOfBounds el resultado cae fuera de los países permitidos.
	ErrorTypeOutOfBounds
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeRateLimit:         "rate_limit",
	ErrorTypeQuotaExceeded:     "quota_exceeded",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeInvalidRequest:    "invalid_request",
	ErrorTypeNetworkError:      "network",
	ErrorTypeMalformedResponse: "malformed_response",
	ErrorTypeLowConfidence:     "low_confidence",
	ErrorTypeOutOfBounds:       "out_of_bounds",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func typeOf(err error) (ErrorType, bool) {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// TypeOf returns the ErrorType of err, ErrorTypeUnknown for foreign errors.
func TypeOf(err error) ErrorType {
	t, _ := typeOf(err)

	return t
}

// IsRateLimitError verifica si el error es por límite de tasa.
func IsRateLimitError(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeRateLimit
	}

	// Detectar por mensaje de error común
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError verifica si el error es por cuota excedida.
func IsQuotaExceededError(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError verifica si el error es por timeout.
func IsTimeoutError(err error) bool {
	if t, ok := typeOf(err); ok {
		return t == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNotFoundError verifica si el proveedor no encontró la ubicación.
func IsNotFoundError(err error) bool {
	t, ok := typeOf(err)

	return ok && t == ErrorTypeNotFound
}

// IsValidationError verifica si el proveedor respondió pero el resultado fue
// descartado por confianza o por bounding box.
func IsValidationError(err error) bool {
	t, ok := typeOf(err)

	return ok && (t == ErrorTypeLowConfidence || t == ErrorTypeOutOfBounds)
}

// IsProviderUnavailable verifica si el error impidió obtener una respuesta
// (red, timeout, HTTP no 2xx o respuesta ilegible).
func IsProviderUnavailable(err error) bool {
	if err == nil {
		return false
	}

	switch TypeOf(err) {
	case ErrorTypeNotFound, ErrorTypeLowConfidence, ErrorTypeOutOfBounds:
		return false
	default:
		return true
	}
}

// ClassifyHTTPError clasifica un error HTTP en un tipo de error de geocodificación.
func ClassifyHTTPError(statusCode int, body string) *GeocodingError {
	var cause error
	if body = strings.TrimSpace(body); body != "" {
		cause = errors.New(body[:min(len(body), 256)])
	}

	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "límite de tasa alcanzado",
			Err:     cause,
		}
	case http.StatusPaymentRequired: // 402, OpenCage
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "cuota excedida",
			Err:     cause,
		}
	case http.StatusForbidden: // 403
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "cuota excedida o acceso denegado",
			Err:     cause,
		}
	case http.StatusUnauthorized: // 401
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "clave de API inválida",
			Err:     cause,
		}
	case http.StatusBadRequest: // 400
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "request inválido",
			Err:     cause,
		}
	case http.StatusNotFound: // 404
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "ubicación no encontrada",
			Err:     cause,
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("servicio no disponible (código %d)", statusCode),
			Err:     cause,
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("error HTTP %d", statusCode),
			Err:     cause,
		}
	}
}

// ClassifyTransportError clasifica un error de http.Client.Do.
func ClassifyTransportError(err error) *GeocodingError {
	var netErr net.Error

	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "timeout consultando al proveedor", Err: err}
	}

	return &GeocodingError{Type: ErrorTypeNetworkError, Message: "error de red consultando al proveedor", Err: err}
}
