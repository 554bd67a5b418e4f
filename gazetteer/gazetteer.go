// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package gazetteer is the curated table of well known places and of the
// countries we geocode into. A Gazetteer is read-only once built and can be
// shared between goroutines without locking.
package gazetteer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/observatorio/geonoticias/spatial"
	"github.com/observatorio/geonoticias/utils/textutils"
)

// Kind of place.
type Kind string

// Known kinds.
const (
	KindCity     Kind = "city"
	KindProvince Kind = "province"
)

// Place is a gazetteer entry.
type Place struct {
	Name    string        `json:"name"`
	Aliases []string      `json:"aliases,omitempty"`
	Country string        `json:"country"`
	Kind    Kind          `json:"kind"`
	Point   spatial.Point `json:"point"`
}

// Country is an ISO-3166 alpha-2 code (lowercase), the name we append to
// country qualified queries, and the box every result must fall into.
type Country struct {
	Code string              `json:"code"`
	Name string              `json:"name"`
	Box  spatial.BoundingBox `json:"bbox"`
}

// Mention is one written form of a place, as searched in text.
type Mention struct {
	Name  string
	Place Place
}

// Gazetteer indexes places by normalized name and countries by code.
type Gazetteer struct {
	places    []Place
	byName    map[string]int
	countries map[string]Country
	byCountry map[string]string // normalized country name -> code
}

var (
	ErrUnknownCountry = errors.New("país desconocido")
	ErrDuplicateName  = errors.New("nombre duplicado en el gazetteer")
)

// New builds a gazetteer. Names (and aliases) must be unique once normalized.
func New(places []Place, countries []Country) (*Gazetteer, error) {
	g := &Gazetteer{
		byName:    make(map[string]int),
		countries: make(map[string]Country),
		byCountry: make(map[string]string),
	}

	for _, c := range countries {
		if err := g.addCountry(c); err != nil {
			return nil, err
		}
	}

	for _, p := range places {
		if err := g.addPlace(p); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Default returns the built-in gazetteer.
func Default() *Gazetteer {
	g, err := New(defaultPlaces, defaultCountries)
	if err != nil {
		panic(fmt.Sprintf("built-in gazetteer is inconsistent: %v", err))
	}

	return g
}

func (g *Gazetteer) addCountry(c Country) error {
	c.Code = strings.ToLower(strings.TrimSpace(c.Code))
	if len(c.Code) != 2 {
		return fmt.Errorf("%w: código %q", ErrUnknownCountry, c.Code)
	}

	if err := c.Box.Validate(); err != nil {
		return fmt.Errorf("país %s: %w", c.Code, err)
	}

	g.countries[c.Code] = c
	g.byCountry[textutils.Normalize(c.Name)] = c.Code

	return nil
}

func (g *Gazetteer) addPlace(p Place) error {
	p.Country = strings.ToLower(strings.TrimSpace(p.Country))
	if _, ok := g.countries[p.Country]; !ok {
		return fmt.Errorf("%w: %q (lugar %q)", ErrUnknownCountry, p.Country, p.Name)
	}

	if err := p.Point.Validate(); err != nil {
		return fmt.Errorf("lugar %q: %w", p.Name, err)
	}

	if p.Kind == "" {
		p.Kind = KindCity
	}

	idx := len(g.places)

	for _, name := range append([]string{p.Name}, p.Aliases...) {
		key := textutils.Normalize(name)
		if key == "" {
			return fmt.Errorf("lugar %q: nombre vacío", p.Name)
		}

		if _, dup := g.byName[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}

		g.byName[key] = idx
	}

	g.places = append(g.places, p)

	return nil
}

// Lookup finds a place by name. Any spelling that normalizes to the same key
// matches ("MAR DEL PLATA", "mar del plata").
func (g *Gazetteer) Lookup(name string) (Place, bool) {
	idx, ok := g.byName[textutils.Normalize(name)]
	if !ok {
		return Place{}, false
	}

	return g.places[idx], true
}

// Places returns a copy of all entries in insertion order.
func (g *Gazetteer) Places() []Place {
	return append([]Place(nil), g.places...)
}

// Mentions returns every written form of every place, longest first, so a
// scanner consuming them in order finds "Santiago del Estero" before "Santiago".
func (g *Gazetteer) Mentions() []Mention {
	var mentions []Mention

	for _, p := range g.places {
		for _, name := range append([]string{p.Name}, p.Aliases...) {
			mentions = append(mentions, Mention{Name: name, Place: p})
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return len([]rune(mentions[i].Name)) > len([]rune(mentions[j].Name))
	})

	return mentions
}

// Country returns the country for an ISO code.
func (g *Gazetteer) Country(code string) (Country, bool) {
	c, ok := g.countries[strings.ToLower(code)]

	return c, ok
}

// CountryByName resolves "Argentina", "PERU" or "Perú" to its country.
func (g *Gazetteer) CountryByName(name string) (Country, bool) {
	code, ok := g.byCountry[textutils.Normalize(name)]
	if !ok {
		return Country{}, false
	}

	return g.countries[code], true
}

// Countries returns all countries sorted by code.
func (g *Gazetteer) Countries() []Country {
	ret := make([]Country, 0, len(g.countries))
	for _, c := range g.countries {
		ret = append(ret, c)
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i].Code < ret[j].Code })

	return ret
}

// WithBoxes returns a copy of g where the given countries use a different box.
func (g *Gazetteer) WithBoxes(boxes map[string]spatial.BoundingBox) (*Gazetteer, error) {
	countries := g.Countries()
	for i := range countries {
		if box, ok := boxes[countries[i].Code]; ok {
			countries[i].Box = box
		}
	}

	for code := range boxes {
		if _, ok := g.countries[strings.ToLower(code)]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
		}
	}

	return New(g.places, countries)
}

// Validate checks that every place lies inside its country's box.
func (g *Gazetteer) Validate() error {
	var errs []error

	for _, p := range g.places {
		c := g.countries[p.Country]
		if !c.Box.Contains(p.Point) {
			errs = append(errs, fmt.Errorf("%s (%s) está fuera de %s: %s", p.Name, p.Country, c.Name, p.Point))
		}
	}

	return errors.Join(errs...)
}

// File is the on-disk format accepted by LoadFile.
type File struct {
	Countries []Country `json:"countries"`
	Places    []Place   `json:"places"`
}

// LoadFile extends g with the countries and places of a JSON file, returning
// a new gazetteer. Entries in the file may not redefine existing names.
func (g *Gazetteer) LoadFile(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading gazetteer file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing gazetteer JSON: %w", err)
	}

	countries := g.Countries()

	for _, c := range f.Countries {
		if _, exists := g.Country(c.Code); exists {
			return nil, fmt.Errorf("gazetteer %s: country %q already defined", path, c.Code)
		}

		countries = append(countries, c)
	}

	ret, err := New(append(g.Places(), f.Places...), countries)
	if err != nil {
		return nil, fmt.Errorf("gazetteer %s: %w", path, err)
	}

	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("gazetteer %s: %w", path, err)
	}

	return ret, nil
}
