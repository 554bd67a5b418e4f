// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package enrich ties extraction, geocoding and persistence together: it
// picks the primary location of each article and stores what was resolved.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/geocode"
	"github.com/observatorio/geonoticias/news"
	"github.com/observatorio/geonoticias/suggest"
	"github.com/observatorio/geonoticias/utils/htmlutils"
)

// ErrPersistence wraps failures writing the locations of an article.
var ErrPersistence = errors.New("persistence failure")

// OutcomeKind classifies the result of processing one article.
type OutcomeKind int

// Outcome kinds.
const (
	Enriched OutcomeKind = iota
	NoLocationsFound
	PartialFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Enriched:
		return "enriched"
	case NoLocationsFound:
		return "no_locations"
	case PartialFailure:
		return "partial_failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is what happened to one article.
type Outcome struct {
	Kind      OutcomeKind
	ArticleID string
	// Primary is set when Kind is Enriched.
	Primary *Resolved
	// Resolved holds every resolved candidate, best first.
	Resolved []Resolved
	// Candidates is the number of extracted candidates.
	Candidates int
	// Unresolved explains the candidates that could not be resolved. They
	// never make the article fail.
	Unresolved []error
	// Err is the failure behind a PartialFailure.
	Err error
}

// Mode decides which locations are persisted.
type Mode string

// Persistence modes.
const (
	// ModePrimary stores only the primary location.
	ModePrimary Mode = "primary"
	// ModeAll stores every resolved location, flagging the primary.
	ModeAll Mode = "all"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePrimary || m == ModeAll
}

// Resolver is the geocoding step, satisfied by *geocode.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, c extract.Candidate, countryHint string) geocode.Resolution
}

// LocationWriter is the persistence port, satisfied by news.Repository.
type LocationWriter interface {
	ReplaceLocations(ctx context.Context, articleID string, locations []news.ResolvedLocation) error
}

// persistTimeout bounds the write of an article once resolution finished. It
// runs detached from cancellation so an interrupted batch never leaves an
// article half written.
const persistTimeout = 30 * time.Second

// Orchestrator processes articles one at a time per article id; different
// articles can be processed concurrently.
type Orchestrator struct {
	extractor *extract.Extractor
	resolver  Resolver
	writer    LocationWriter
	suggester suggest.Source
	mode      Mode
	locks     keyedMutex
}

// NewOrchestrator builds an Orchestrator. suggester may be nil.
func NewOrchestrator(
	extractor *extract.Extractor,
	resolver Resolver,
	writer LocationWriter,
	suggester suggest.Source,
	mode Mode,
) *Orchestrator {
	if mode == "" {
		mode = ModePrimary
	}

	return &Orchestrator{
		extractor: extractor,
		resolver:  resolver,
		writer:    writer,
		suggester: suggester,
		mode:      mode,
		locks:     keyedMutex{locks: make(map[string]*refLock)},
	}
}

// Process runs the pipeline for one article and replaces its locations.
func (o *Orchestrator) Process(ctx context.Context, article *news.Article) Outcome {
	unlock := o.locks.Lock(article.ID)
	defer unlock()

	out := Outcome{ArticleID: article.ID}

	body, err := htmlutils.ToText(article.Body)
	if err != nil {
		body = article.Body
	}

	var hints []extract.Candidate

	if o.suggester != nil {
		hints, err = o.suggester.Suggest(ctx, article.Title, body)
		if err != nil {
			log.Printf("⚠️ [%s] AI suggestions unavailable, using lexical extraction only: %v", article.ID, err)

			hints = nil
		}
	}

	candidates := o.extractor.Extract(article.Title+".\n"+body, hints)
	extract.MarkTitleMentions(candidates, article.Title)

	out.Candidates = len(candidates)
	if len(candidates) == 0 {
		out.Kind = NoLocationsFound

		return out
	}

	var resolved []Resolved

	for _, c := range candidates {
		res := o.resolver.Resolve(ctx, c, article.SourceCountryHint)
		if !res.Resolved {
			out.Unresolved = append(out.Unresolved, fmt.Errorf("%q: %w", c.Raw, res.Err))

			continue
		}

		resolved = append(resolved, Resolved{Candidate: c, Result: res.Result})
	}

	// resolutions cut short by cancellation are not trustworthy, keep the
	// previous locations
	if err := ctx.Err(); err != nil {
		out.Kind = PartialFailure
		out.Err = fmt.Errorf("article %s interrupted: %w", article.ID, err)

		return out
	}

	if len(resolved) == 0 {
		out.Kind = NoLocationsFound

		return out
	}

	out.Resolved = dedupe(Rank(resolved, article.Title))
	primary := out.Resolved[0]

	locations := []news.ResolvedLocation{o.location(article.ID, primary, true)}

	if o.mode == ModeAll {
		for _, r := range out.Resolved[1:] {
			locations = append(locations, o.location(article.ID, r, false))
		}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := o.writer.ReplaceLocations(writeCtx, article.ID, locations); err != nil {
		out.Kind = PartialFailure
		out.Err = fmt.Errorf("%w: article %s: %w", ErrPersistence, article.ID, err)

		return out
	}

	out.Kind = Enriched
	out.Primary = &primary

	return out
}

func (o *Orchestrator) location(articleID string, r Resolved, primary bool) news.ResolvedLocation {
	name := r.Candidate.Raw
	if name == "" {
		name = r.Result.Name
	}

	return news.ResolvedLocation{
		ArticleID:   articleID,
		Name:        name,
		Point:       r.Result.Point(),
		CountryCode: strings.ToLower(r.Result.CountryCode),
		IsPrimary:   primary,
		Confidence:  r.Result.Confidence,
		Provider:    r.Result.Provider,
	}
}

// dedupe drops later entries that landed on the same spot ("Tucumán" and
// "San Miguel de Tucumán").
func dedupe(ranked []Resolved) []Resolved {
	seen := make(map[string]bool, len(ranked))
	ret := make([]Resolved, 0, len(ranked))

	for _, r := range ranked {
		key := r.Result.CountryCode + "|" + r.Result.Point().Round().String()
		if seen[key] {
			continue
		}

		seen[key] = true

		ret = append(ret, r)
	}

	return ret
}

// keyedMutex serializes work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()

	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}

	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--

		if l.refs == 0 {
			delete(k.locks, key)
		}

		k.mu.Unlock()
	}
}
