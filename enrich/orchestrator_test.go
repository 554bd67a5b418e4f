// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/gazetteer"
	"github.com/observatorio/geonoticias/geocode"
	"github.com/observatorio/geonoticias/news"
	"github.com/observatorio/geonoticias/suggest"
)

// countingProvider knows a few places outside the gazetteer and counts calls.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	known map[string]geocode.Result
}

func (p *countingProvider) Name() string { return "stub" }

func (p *countingProvider) Geocode(_ context.Context, q geocode.Query) (*geocode.Result, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.known[q.Text]
	if !ok {
		return nil, &geocode.GeocodingError{Type: geocode.ErrorTypeNetworkError, Message: "connection refused"}
	}

	return &r, nil
}

func (p *countingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

type stubSuggester struct {
	hints []extract.Candidate
	err   error
}

func (s stubSuggester) Suggest(context.Context, string, string) ([]extract.Candidate, error) {
	return s.hints, s.err
}

type pipeline struct {
	orch     *Orchestrator
	repo     news.Repository
	provider *countingProvider
}

func newPipeline(t *testing.T, mode Mode, suggester suggest.Source) *pipeline {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := news.NewRepository(db)
	require.NoError(t, repo.CreateSchema(context.Background()))

	provider := &countingProvider{known: map[string]geocode.Result{
		"Batán": {Name: "Batán, Buenos Aires", Latitude: -38.0097, Longitude: -57.7104, CountryCode: "ar", Confidence: 8},
	}}

	gaz := gazetteer.Default()
	resolver := geocode.NewResolver(
		geocode.OpenFileCache(filepath.Join(t.TempDir(), "cache.json")),
		gaz,
		provider,
		geocode.NewValidator(gaz, []string{"ar", "cl", "uy", "py", "bo"}, 6),
		geocode.ResolverOptions{Language: "es", DefaultCountry: "ar"},
	)

	return &pipeline{
		orch:     NewOrchestrator(extract.New(gaz), resolver, repo, suggester, mode),
		repo:     repo,
		provider: provider,
	}
}

func (p *pipeline) locations(t *testing.T, articleID string) []news.ResolvedLocation {
	t.Helper()

	got, err := p.repo.ListLocations(context.Background(), articleID)
	require.NoError(t, err)

	return got
}

var marDelPlataArticle = &news.Article{
	ID:                "mdq-1",
	Title:             "Desarticulan laboratorio en Mar del Plata",
	Body:              "<p>La policía allanó una vivienda en la ciudad de Mar del Plata.</p>",
	SourceCountryHint: "ar",
}

func TestProcessMarDelPlata(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	out := p.orch.Process(context.Background(), marDelPlataArticle)
	require.Equal(t, Enriched, out.Kind, "err: %v", out.Err)
	assert.Equal(t, 1, out.Candidates)
	assert.Equal(t, "Mar del Plata", out.Primary.Candidate.Raw)
	assert.Equal(t, TitleMentionScore, out.Primary.Score)
	assert.Equal(t, 0, p.provider.Calls())

	got := p.locations(t, "mdq-1")
	require.Len(t, got, 1)
	assert.Equal(t, "Mar del Plata", got[0].Name)
	assert.InDelta(t, -38.0055, got[0].Point.Lat, 1e-6)
	assert.InDelta(t, -57.5426, got[0].Point.Lng, 1e-6)
	assert.Equal(t, "ar", got[0].CountryCode)
	assert.True(t, got[0].IsPrimary)
	assert.Equal(t, "gazetteer", got[0].Provider)
}

func TestProcessIsIdempotent(t *testing.T) {
	for _, mode := range []Mode{ModePrimary, ModeAll} {
		t.Run(string(mode), func(t *testing.T) {
			p := newPipeline(t, mode, nil)
			article := &news.Article{
				ID:    "idem",
				Title: "Choque en Rosario",
				Body:  "El conductor venía desde Mar del Plata y siguió hacia Batán.",
			}

			first := p.orch.Process(context.Background(), article)
			require.Equal(t, Enriched, first.Kind)

			before := p.locations(t, "idem")

			second := p.orch.Process(context.Background(), article)
			require.Equal(t, Enriched, second.Kind)

			after := p.locations(t, "idem")

			if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(news.ResolvedLocation{}, "CreatedAt")); diff != "" {
				t.Errorf("reprocessing changed the locations (-first +second):\n%s", diff)
			}

			// the provider was asked once, the second run came from the cache
			assert.Equal(t, 1, p.provider.Calls())
		})
	}
}

func TestProcessModeAll(t *testing.T) {
	p := newPipeline(t, ModeAll, nil)
	article := &news.Article{
		ID:    "all-1",
		Title: "Choque en Rosario",
		Body:  "El conductor venía desde Mar del Plata.",
	}

	out := p.orch.Process(context.Background(), article)
	require.Equal(t, Enriched, out.Kind)
	require.Len(t, out.Resolved, 2)

	got := p.locations(t, "all-1")
	require.Len(t, got, 2)
	assert.Equal(t, "Rosario", got[0].Name)
	assert.True(t, got[0].IsPrimary)
	assert.Equal(t, "Mar del Plata", got[1].Name)
	assert.False(t, got[1].IsPrimary)
}

func TestProcessModePrimaryStoresOne(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)
	article := &news.Article{
		ID:    "primary-1",
		Title: "Choque en Rosario",
		Body:  "El conductor venía desde Mar del Plata.",
	}

	out := p.orch.Process(context.Background(), article)
	require.Equal(t, Enriched, out.Kind)
	assert.Len(t, out.Resolved, 2)

	got := p.locations(t, "primary-1")
	require.Len(t, got, 1)
	assert.Equal(t, "Rosario", got[0].Name)
}

func TestProcessNoLocations(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	out := p.orch.Process(context.Background(), &news.Article{
		ID:    "none",
		Title: "sin novedades",
		Body:  "el operativo terminó sin detenidos.",
	})
	assert.Equal(t, NoLocationsFound, out.Kind)
	assert.Zero(t, out.Candidates)
	assert.Empty(t, p.locations(t, "none"))
	assert.Equal(t, 0, p.provider.Calls())
}

func TestProcessNothingResolves(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	out := p.orch.Process(context.Background(), &news.Article{
		ID:    "unknown",
		Title: "Incendio en Villa Gesell",
		Body:  "",
	})
	assert.Equal(t, NoLocationsFound, out.Kind)
	assert.Equal(t, 1, out.Candidates)
	assert.Len(t, out.Unresolved, 1)
	assert.Empty(t, p.locations(t, "unknown"))
}

func TestProcessIsolatesCandidateFailures(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	out := p.orch.Process(context.Background(), &news.Article{
		ID:    "partial",
		Title: "Incendio en Villa Gesell",
		Body:  "También hubo daños en Mar del Plata.",
	})
	require.Equal(t, Enriched, out.Kind)
	assert.Equal(t, "Mar del Plata", out.Primary.Candidate.Raw)
	require.Len(t, out.Unresolved, 1)
	assert.True(t, geocode.IsProviderUnavailable(out.Unresolved[0]))
}

func TestProcessUsesSuggestions(t *testing.T) {
	p := newPipeline(t, ModeAll, stubSuggester{hints: []extract.Candidate{extract.NewHint("Batán", "ar", true)}})

	out := p.orch.Process(context.Background(), &news.Article{
		ID:    "ai-1",
		Title: "Allanamientos en la zona",
		Body:  "Los procedimientos se hicieron en Batán y en Mar del Plata.",
	})
	require.Equal(t, Enriched, out.Kind)
	assert.Equal(t, "Batán", out.Primary.Candidate.Raw)
	assert.True(t, out.Primary.Candidate.Signals.Has(extract.SignalAI|extract.SignalPattern))
	assert.Equal(t, AIPrimaryScore, out.Primary.Score)

	got := p.locations(t, "ai-1")
	require.Len(t, got, 2)
	assert.Equal(t, "Batán", got[0].Name)
	assert.True(t, got[0].IsPrimary)
}

func TestProcessSuggesterFailureFallsBack(t *testing.T) {
	p := newPipeline(t, ModePrimary, stubSuggester{err: errors.New("overloaded")})

	out := p.orch.Process(context.Background(), marDelPlataArticle)
	require.Equal(t, Enriched, out.Kind)
	assert.Equal(t, "Mar del Plata", out.Primary.Candidate.Raw)
}

// corruptingWriter appends an invalid row, so the real repository fails after
// having deleted the previous locations inside its transaction.
type corruptingWriter struct {
	repo news.Repository
}

func (w corruptingWriter) ReplaceLocations(ctx context.Context, articleID string, locations []news.ResolvedLocation) error {
	bad := locations[0]
	bad.IsPrimary = false
	bad.Point.Lat = math.NaN()

	return w.repo.ReplaceLocations(ctx, articleID, append(locations, bad))
}

func TestProcessPersistenceFailureRollsBack(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	require.Equal(t, Enriched, p.orch.Process(context.Background(), marDelPlataArticle).Kind)
	before := p.locations(t, "mdq-1")
	require.Len(t, before, 1)

	broken := NewOrchestrator(p.orch.extractor, p.orch.resolver, corruptingWriter{p.repo}, nil, ModePrimary)

	out := broken.Process(context.Background(), marDelPlataArticle)
	assert.Equal(t, PartialFailure, out.Kind)
	assert.ErrorIs(t, out.Err, ErrPersistence)

	assert.Equal(t, before, p.locations(t, "mdq-1"))
}

func TestProcessCancelledKeepsPreviousLocations(t *testing.T) {
	p := newPipeline(t, ModePrimary, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.orch.Process(ctx, marDelPlataArticle)
	assert.Equal(t, PartialFailure, out.Kind)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Empty(t, p.locations(t, "mdq-1"))
}

func TestProcessSameArticleConcurrently(t *testing.T) {
	p := newPipeline(t, ModeAll, nil)
	article := &news.Article{
		ID:    "race",
		Title: "Choque en Rosario",
		Body:  "El conductor venía desde Mar del Plata.",
	}

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			out := p.orch.Process(context.Background(), article)
			assert.Equal(t, Enriched, out.Kind)
		}()
	}

	wg.Wait()

	got := p.locations(t, "race")
	assert.Len(t, got, 2)
	assert.Empty(t, p.orch.locks.locks, "locks are released")
}

func TestDedupe(t *testing.T) {
	a := resolvedFor("Tucumán", false)
	a.Result.Latitude, a.Result.Longitude = -26.8083, -65.2176
	b := resolvedFor("San Miguel de Tucumán", false)
	b.Result.Latitude, b.Result.Longitude = -26.8083, -65.2176
	c := resolvedFor("Salta", false)
	c.Result.Latitude, c.Result.Longitude = -24.7821, -65.4232

	got := dedupe([]Resolved{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, "Tucumán", got[0].Candidate.Raw)
	assert.Equal(t, "Salta", got[1].Candidate.Raw)
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "enriched", Enriched.String())
	assert.Equal(t, "no_locations", NoLocationsFound.String())
	assert.Equal(t, "partial_failure", PartialFailure.String())
	assert.True(t, ModeAll.Valid())
	assert.False(t, Mode("some").Valid())
}

func TestPersistedLocationsStayInsideTheirCountry(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, ModeAll, nil)
	gaz := gazetteer.Default()

	articles := []*news.Article{
		{ID: "bb-1", Title: "Temporal en Montevideo", Body: "También llovió en Salto y en Punta del Este."},
		{ID: "bb-2", Title: "Corte de luz en Valparaíso", Body: "Afectó a Viña del Mar y a vecinos de Santiago."},
		{ID: "bb-3", Title: "Choque cerca de Batán", Body: "Los heridos fueron trasladados a Mar del Plata."},
		{ID: "bb-4", Title: "Asunción y Ciudad del Este", Body: "Protestas en ambas ciudades."},
	}

	for _, a := range articles {
		out := p.orch.Process(ctx, a)
		require.Equal(t, Enriched, out.Kind, a.ID)
	}

	all := p.locations(t, "")
	require.NotEmpty(t, all)

	for _, l := range all {
		require.NoError(t, l.Point.Validate(), l.Name)

		c, ok := gaz.Country(l.CountryCode)
		require.True(t, ok, l.CountryCode)
		assert.True(t, c.Box.Contains(l.Point), "%s (%s) %s", l.Name, l.CountryCode, l.Point)
	}
}
