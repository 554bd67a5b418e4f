// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package news

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strconv"
	"strings"
)

var (
	errMultipleMatches = errors.New("multiple matches")
	errSourceNotFound  = errors.New("source not found")
)

// Source is a news outlet we know the country of.
type Source struct {
	ID      int      // ID of the source
	Name    string   // Name of the outlet
	Country string   // ISO code, lowercase
	Domains []string // Hosts the articles are published under; subdomains match too
}

// Validate checks that the source can be used for lookups.
func (s *Source) Validate() error {
	if s.Name == "" {
		return errors.New("source: name must not be empty")
	}

	if len(s.Country) != 2 {
		return fmt.Errorf("source %q: invalid country %q", s.Name, s.Country)
	}

	if len(s.Domains) == 0 {
		return fmt.Errorf("source %q: no domains", s.Name)
	}

	return nil
}

var sources = []Source{
	{ID: 1, Name: "Clarín", Country: "ar", Domains: []string{"clarin.com"}},
	{ID: 2, Name: "La Nación", Country: "ar", Domains: []string{"lanacion.com.ar"}},
	{ID: 3, Name: "Infobae", Country: "ar", Domains: []string{"infobae.com"}},
	{ID: 4, Name: "Página/12", Country: "ar", Domains: []string{"pagina12.com.ar"}},
	{ID: 5, Name: "Télam", Country: "ar", Domains: []string{"telam.com.ar"}},
	{ID: 6, Name: "La Capital", Country: "ar", Domains: []string{"lacapitalmdp.com", "lacapital.com.ar"}},
	{ID: 20, Name: "Emol", Country: "cl", Domains: []string{"emol.com"}},
	{ID: 21, Name: "La Tercera", Country: "cl", Domains: []string{"latercera.com"}},
	{ID: 22, Name: "Cooperativa", Country: "cl", Domains: []string{"cooperativa.cl"}},
	{ID: 23, Name: "El Mostrador", Country: "cl", Domains: []string{"elmostrador.cl"}},
	{ID: 40, Name: "El País Uruguay", Country: "uy", Domains: []string{"elpais.com.uy"}},
	{ID: 41, Name: "El Observador", Country: "uy", Domains: []string{"elobservador.com.uy"}},
	{ID: 42, Name: "Montevideo Portal", Country: "uy", Domains: []string{"montevideo.com.uy"}},
	{ID: 60, Name: "ABC Color", Country: "py", Domains: []string{"abc.com.py"}},
	{ID: 61, Name: "Última Hora", Country: "py", Domains: []string{"ultimahora.com"}},
	{ID: 62, Name: "La Nación Paraguay", Country: "py", Domains: []string{"lanacion.com.py"}},
	{ID: 80, Name: "El Deber", Country: "bo", Domains: []string{"eldeber.com.bo"}},
	{ID: 81, Name: "La Razón", Country: "bo", Domains: []string{"la-razon.com"}},
	{ID: 82, Name: "Los Tiempos", Country: "bo", Domains: []string{"lostiempos.com"}},
}

// country code top level domains that are reliable enough as a hint
var countryTLDs = map[string]bool{
	"ar": true, "bo": true, "br": true, "cl": true, "mx": true,
	"pe": true, "py": true, "uy": true, "ve": true, "ec": true,
}

// FindSource finds a source by ID or by case insensitive name prefix.
func FindSource(q string) (*Source, error) {
	if q == "" {
		return nil, errors.New("empty search query")
	}

	var predicate func(s *Source) bool
	if n, err := strconv.Atoi(q); err == nil {
		predicate = func(s *Source) bool {
			return n == s.ID
		}
	} else {
		predicate = func(s *Source) bool {
			return len(s.Name) >= len(q) &&
				strings.EqualFold(s.Name[:len(q)], q)
		}
	}

	var found *Source

	for i := range sources {
		if predicate(&sources[i]) {
			if found != nil {
				return nil, fmt.Errorf("%w for %q: %q, %q", errMultipleMatches, q, found.Name, sources[i].Name)
			}

			s := sources[i]
			found = &s
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %q", errSourceNotFound, q)
	}

	return found, nil
}

// EachSource applies the callback to every known source, stopping at the
// first error.
func EachSource(callback func(Source) error) error {
	for i := range sources {
		if err := callback(sources[i]); err != nil {
			return err
		}
	}

	return nil
}

func hostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// SourceForURL returns the source that publishes under the URL's host.
func SourceForURL(rawURL string) (*Source, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return nil, false
	}

	for i := range sources {
		for _, d := range sources[i].Domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				s := sources[i]

				return &s, true
			}
		}
	}

	return nil, false
}

// CountryForURL guesses the country of an article from where it was
// published: a known source first, then the country TLD. Empty when unknown.
func CountryForURL(rawURL string) string {
	if s, ok := SourceForURL(rawURL); ok {
		return s.Country
	}

	host := hostOf(rawURL)
	if i := strings.LastIndexByte(host, '.'); i >= 0 && countryTLDs[host[i+1:]] {
		return host[i+1:]
	}

	return ""
}
