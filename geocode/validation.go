// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/observatorio/geonoticias/gazetteer"
)

// Validator decide si un resultado del proveedor es aceptable: confianza
// mínima, país permitido y coordenadas dentro de la bounding box del país.
type Validator struct {
	gaz       *gazetteer.Gazetteer
	allowed   map[string]bool
	threshold int
}

// NewValidator crea un validador. Con allowed vacío se aceptan todos los
// países que tengan bounding box en el gazetteer.
func NewValidator(gaz *gazetteer.Gazetteer, allowed []string, threshold int) *Validator {
	v := &Validator{
		gaz:       gaz,
		allowed:   make(map[string]bool, len(allowed)),
		threshold: threshold,
	}

	for _, c := range allowed {
		v.allowed[strings.ToLower(c)] = true
	}

	return v
}

// Threshold returns the minimum accepted confidence.
func (v *Validator) Threshold() int {
	return v.threshold
}

// Allowed reports whether results in country are accepted.
func (v *Validator) Allowed(country string) bool {
	country = strings.ToLower(country)
	if len(v.allowed) > 0 {
		return v.allowed[country]
	}

	_, ok := v.gaz.Country(country)

	return ok
}

// AllowedCountries returns the sorted allow-list sent to providers. Without
// an explicit list it is every gazetteer country.
func (v *Validator) AllowedCountries() []string {
	var ret []string

	if len(v.allowed) > 0 {
		for c := range v.allowed {
			ret = append(ret, c)
		}

		sort.Strings(ret)

		return ret
	}

	for _, c := range v.gaz.Countries() {
		ret = append(ret, c.Code)
	}

	return ret
}

// CheckConfidence rechaza resultados debajo del umbral.
func (v *Validator) CheckConfidence(r Result) error {
	if r.Confidence < v.threshold {
		return &GeocodingError{
			Type:    ErrorTypeLowConfidence,
			Message: fmt.Sprintf("confianza %d menor al umbral %d", r.Confidence, v.threshold),
		}
	}

	return nil
}

// CheckBounds verifica rango global, país permitido y bounding box del país.
func (v *Validator) CheckBounds(r Result) error {
	p := r.Point()

	if err := p.Validate(); err != nil {
		return &GeocodingError{Type: ErrorTypeOutOfBounds, Message: "coordenadas inválidas", Err: err}
	}

	if !v.Allowed(r.CountryCode) {
		return &GeocodingError{
			Type:    ErrorTypeOutOfBounds,
			Message: fmt.Sprintf("país %q fuera de los permitidos", r.CountryCode),
		}
	}

	country, ok := v.gaz.Country(r.CountryCode)
	if !ok {
		// no declared box, nothing else to check
		return nil
	}

	if !country.Box.Contains(p) {
		return &GeocodingError{
			Type:    ErrorTypeOutOfBounds,
			Message: fmt.Sprintf("%s fuera de los límites de %s", p, country.Name),
		}
	}

	return nil
}

// Check aplica CheckConfidence y CheckBounds, en ese orden.
func (v *Validator) Check(r Result) error {
	if err := v.CheckConfidence(r); err != nil {
		return err
	}

	return v.CheckBounds(r)
}
