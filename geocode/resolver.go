// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/gazetteer"
)

// ErrUnresolved is the reason of a resolution that simply found nothing.
var ErrUnresolved = errors.New("location not resolved")

// Tier tells which step produced a result.
type Tier string

// Resolution tiers, in the order they are consulted.
const (
	TierCache     Tier = "cache"
	TierGazetteer Tier = "gazetteer"
	TierProvider  Tier = "provider"
)

// Resolution is the outcome of resolving one candidate. Unresolved is an
// expected outcome, not an error: Err only explains why.
type Resolution struct {
	Query    string
	Key      string
	Resolved bool
	Tier     Tier
	Result   Result
	Err      error
}

// ResolverMetrics counts what the resolver did.
type ResolverMetrics struct {
	CacheHits     int
	GazetteerHits int
	ProviderCalls int
	ProviderHits  int
	Retries       int
	Unresolved    int
	CacheErrors   int
}

// Merge combines two ResolverMetrics.
func (m *ResolverMetrics) Merge(o *ResolverMetrics) *ResolverMetrics {
	if o == nil {
		return m
	}

	m.CacheHits += o.CacheHits
	m.GazetteerHits += o.GazetteerHits
	m.ProviderCalls += o.ProviderCalls
	m.ProviderHits += o.ProviderHits
	m.Retries += o.Retries
	m.Unresolved += o.Unresolved
	m.CacheErrors += o.CacheErrors

	return m
}

// ResolverOptions tune the provider tier.
type ResolverOptions struct {
	// Language requested from the provider.
	Language string
	// DefaultCountry is used for the country suffix retry when neither the
	// candidate nor the article say where it is.
	DefaultCountry string
	// Timeout bounds each provider call and each cache operation.
	Timeout time.Duration
	// RatePerSecond limits provider calls across all workers. Zero disables
	// the limiter.
	RatePerSecond float64
}

const defaultTimeout = 10 * time.Second

// Resolver resolves candidates: cache, then gazetteer, then provider with a
// single country qualified retry. Concurrent resolutions of the same key are
// collapsed into one.
type Resolver struct {
	cache     Cache
	gaz       *gazetteer.Gazetteer
	provider  Provider
	validator *Validator
	limiter   *rate.Limiter
	opts      ResolverOptions
	group     singleflight.Group
	now       func() time.Time

	mu      sync.Mutex
	metrics ResolverMetrics
}

// NewResolver wires the tiers together. provider may be nil, in which case
// only the cache and the gazetteer are consulted.
func NewResolver(cache Cache, gaz *gazetteer.Gazetteer, provider Provider, validator *Validator, opts ResolverOptions) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	opts.DefaultCountry = strings.ToLower(opts.DefaultCountry)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	return &Resolver{
		cache:     cache,
		gaz:       gaz,
		provider:  provider,
		validator: validator,
		limiter:   limiter,
		opts:      opts,
		now:       time.Now,
	}
}

// Metrics returns a snapshot of the counters.
func (r *Resolver) Metrics() ResolverMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.metrics
}

func (r *Resolver) count(f func(m *ResolverMetrics)) {
	r.mu.Lock()
	f(&r.metrics)
	r.mu.Unlock()
}

// Resolve geocodes c. countryHint usually comes from the article source; a
// country attached to the candidate itself (gazetteer entry, AI hint) takes
// precedence. It never returns an error: failures end up in Resolution.Err.
func (r *Resolver) Resolve(ctx context.Context, c extract.Candidate, countryHint string) Resolution {
	hint := strings.ToLower(strings.TrimSpace(countryHint))
	if c.Country != "" {
		hint = c.Country
	}

	query := strings.Join(strings.Fields(c.Raw), " ")
	if query == "" {
		query = c.Normalized
	}

	key := CacheKey(query, hint)

	v, _, _ := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, query, key, hint), nil
	})

	res := v.(Resolution)
	if !res.Resolved {
		r.count(func(m *ResolverMetrics) { m.Unresolved++ })
	}

	return res
}

func (r *Resolver) resolve(ctx context.Context, query, key, hint string) Resolution {
	res := Resolution{Query: query, Key: key}

	if cached, ok := r.cacheGet(ctx, key); ok {
		r.count(func(m *ResolverMetrics) { m.CacheHits++ })
		log.Printf("📍 %q (%s): cache hit", query, hintOrNone(hint))

		res.Resolved, res.Tier, res.Result = true, TierCache, *cached

		return res
	}

	if place, ok := r.gaz.Lookup(query); ok {
		result := Result{
			Name:        place.Name,
			Latitude:    place.Point.Lat,
			Longitude:   place.Point.Lng,
			CountryCode: place.Country,
			Confidence:  MaxConfidence,
			Provider:    string(TierGazetteer),
		}

		if err := r.validator.CheckBounds(result); err != nil {
			log.Printf("⚠️ %q (%s): gazetteer entry rejected: %v", query, hintOrNone(hint), err)

			res.Err = err

			return res
		}

		r.count(func(m *ResolverMetrics) { m.GazetteerHits++ })
		log.Printf("📍 %q (%s): gazetteer hit", query, hintOrNone(hint))

		res.Resolved, res.Tier, res.Result = true, TierGazetteer, r.store(ctx, key, result)

		return res
	}

	if r.provider == nil {
		res.Err = ErrUnresolved

		return res
	}

	result, err := r.attempt(ctx, query, hint)
	if err != nil {
		r.logFailure(query, hint, err)

		if retryQuery, ok := r.retryQuery(ctx, query, hint, err); ok {
			r.count(func(m *ResolverMetrics) { m.Retries++ })

			result, err = r.attempt(ctx, retryQuery, hint)
			if err != nil {
				r.logFailure(retryQuery, hint, err)
			}
		}
	}

	if err != nil {
		res.Err = err

		return res
	}

	r.count(func(m *ResolverMetrics) { m.ProviderHits++ })
	log.Printf("📍 %q (%s): resolved by %s to %s, confianza %d",
		query, hintOrNone(hint), result.Provider, result.Point(), result.Confidence)

	res.Resolved, res.Tier, res.Result = true, TierProvider, r.store(ctx, key, *result)

	return res
}

// attempt makes one rate limited, time bounded provider call and validates
// the answer.
func (r *Resolver) attempt(ctx context.Context, text, hint string) (*Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "cancelado esperando al rate limiter", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	r.count(func(m *ResolverMetrics) { m.ProviderCalls++ })

	result, err := r.provider.Geocode(callCtx, Query{
		Text:        text,
		Countries:   r.validator.AllowedCountries(),
		CountryHint: hint,
		Language:    r.opts.Language,
	})
	if err != nil {
		if callCtx.Err() != nil && TypeOf(err) == ErrorTypeUnknown {
			return nil, ClassifyTransportError(callCtx.Err())
		}

		return nil, err
	}

	if result == nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "respuesta vacía del proveedor"}
	}

	if err := r.validator.Check(*result); err != nil {
		return nil, err
	}

	return result, nil
}

// retryQuery returns the country qualified variant of query, if a retry is
// still worth it.
func (r *Resolver) retryQuery(ctx context.Context, query, hint string, err error) (string, bool) {
	if ctx.Err() != nil || IsRateLimitError(err) || IsQuotaExceededError(err) {
		return "", false
	}

	if r.countryQualified(query) {
		return "", false
	}

	code := hint
	if code == "" {
		code = r.opts.DefaultCountry
	}

	country, ok := r.gaz.Country(code)
	if !ok {
		return "", false
	}

	return query + ", " + country.Name, true
}

// countryQualified reports whether query already names a country, either as
// its last comma separated part or as a whole.
func (r *Resolver) countryQualified(query string) bool {
	parts := strings.Split(query, ",")
	_, ok := r.gaz.CountryByName(parts[len(parts)-1])

	return ok
}

// store rounds and timestamps the result and caches it. Cache failures only
// cost a future provider call, so they are logged.
func (r *Resolver) store(ctx context.Context, key string, result Result) Result {
	p := result.Point().Round()
	result.Latitude, result.Longitude = p.Lat, p.Lng
	result.CountryCode = strings.ToLower(result.CountryCode)
	result.ResolvedAt = r.now().UTC()

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	if err := r.cache.Set(cacheCtx, key, result); err != nil {
		r.count(func(m *ResolverMetrics) { m.CacheErrors++ })
		log.Printf("⚠️ %q: could not write geocoding cache: %v", key, err)
	}

	return result
}

func (r *Resolver) cacheGet(ctx context.Context, key string) (*Result, bool) {
	cacheCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cached, ok, err := r.cache.Get(cacheCtx, key)
	if err != nil {
		r.count(func(m *ResolverMetrics) { m.CacheErrors++ })
		log.Printf("⚠️ %q: could not read geocoding cache, treating as miss: %v", key, err)

		return nil, false
	}

	return cached, ok
}

func (r *Resolver) logFailure(query, hint string, err error) {
	switch {
	case IsNotFoundError(err):
		log.Printf("🔍 %q (%s): not found", query, hintOrNone(hint))
	case IsValidationError(err):
		log.Printf("⚠️ %q (%s): rejected [%s]: %v", query, hintOrNone(hint), TypeOf(err), err)
	default:
		log.Printf("❌ %q (%s): provider unavailable [%s]: %v", query, hintOrNone(hint), TypeOf(err), err)
	}
}

func hintOrNone(hint string) string {
	if hint == "" {
		return "sin país"
	}

	return hint
}

// ClearCache removes the entries for query, with and without every known
// country suffix. An empty query clears the whole cache.
func (r *Resolver) ClearCache(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		if err := r.cache.Clear(ctx); err != nil {
			return fmt.Errorf("clearing geocoding cache: %w", err)
		}

		return nil
	}

	keys := []string{CacheKey(query, "")}
	for _, c := range r.gaz.Countries() {
		keys = append(keys, CacheKey(query, c.Code))
	}

	var errs []error

	for _, k := range keys {
		if err := r.cache.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("deleting %q: %w", k, err))
		}
	}

	return errors.Join(errs...)
}
