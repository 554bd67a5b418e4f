// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/observatorio/geonoticias/news"
)

// Summary tallies the outcomes of a batch.
type Summary struct {
	Total       int
	Enriched    int
	NoLocations int
	Failed      int
	// Skipped counts articles never started because the batch was cancelled.
	Skipped    int
	Candidates int
	Unresolved int
	Duration   time.Duration
}

// Merge combines two Summaries.
func (s *Summary) Merge(o *Summary) *Summary {
	if o == nil {
		return s
	}

	s.Total += o.Total
	s.Enriched += o.Enriched
	s.NoLocations += o.NoLocations
	s.Failed += o.Failed
	s.Skipped += o.Skipped
	s.Candidates += o.Candidates
	s.Unresolved += o.Unresolved
	s.Duration += o.Duration

	return s
}

// Add records one outcome.
func (s *Summary) Add(o Outcome) {
	s.Total++
	s.Candidates += o.Candidates
	s.Unresolved += len(o.Unresolved)

	switch o.Kind {
	case Enriched:
		s.Enriched++
	case NoLocationsFound:
		s.NoLocations++
	case PartialFailure:
		s.Failed++
	}
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d articles: %d enriched, %d without locations, %d failed, %d skipped (%d candidates, %d unresolved) in %s",
		s.Total+s.Skipped, s.Enriched, s.NoLocations, s.Failed, s.Skipped,
		s.Candidates, s.Unresolved, s.Duration.Round(time.Millisecond))
}

// Processor handles one article, satisfied by *Orchestrator.
type Processor interface {
	Process(ctx context.Context, article *news.Article) Outcome
}

// ArticleLister feeds the batch, satisfied by news.Repository.
type ArticleLister interface {
	ListArticles(ctx context.Context, filter news.ArticleFilter) ([]*news.Article, error)
}

// Runner processes a batch of articles with a bounded number of workers.
type Runner struct {
	processor Processor
	lister    ArticleLister
	workers   int
	// Progress receives the progress bar. Defaults to stderr when it is a
	// terminal; nil logs each article instead.
	Progress io.Writer
}

// NewRunner creates a Runner. workers <= 0 means one per CPU.
func NewRunner(processor Processor, lister ArticleLister, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := &Runner{processor: processor, lister: lister, workers: workers}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		r.Progress = os.Stderr
	}

	return r
}

// Run enriches the articles matching filter. Per article failures are counted
// in the summary, not returned. Cancelling ctx stops new articles from
// starting; the ones in flight finish or roll back, and ctx's error is
// returned along with the partial summary.
func (r *Runner) Run(ctx context.Context, filter news.ArticleFilter) (*Summary, error) {
	start := time.Now()

	articles, err := r.lister.ListArticles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	summary := r.RunArticles(ctx, articles)
	summary.Duration = time.Since(start)

	return summary, ctx.Err()
}

// RunArticles processes the given articles.
func (r *Runner) RunArticles(ctx context.Context, articles []*news.Article) *Summary {
	start := time.Now()
	n := len(articles)

	var bar *progressbar.ProgressBar
	if r.Progress != nil && n > 0 {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Enriching"),
			progressbar.OptionSetWriter(r.Progress),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		mu      sync.Mutex
		summary = &Summary{}
		g       errgroup.Group
	)

	g.SetLimit(r.workers)

	for i, article := range articles {
		if ctx.Err() != nil {
			mu.Lock()
			summary.Skipped += n - i
			mu.Unlock()

			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()

				return nil
			}

			outcome := r.processor.Process(ctx, article)

			mu.Lock()
			summary.Add(outcome)
			mu.Unlock()

			logOutcome(i+1, n, outcome, bar == nil)

			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Printf("updating progress bar for %s: %v", article.ID, err)
				}
			}

			return nil
		})
	}

	_ = g.Wait()

	summary.Duration = time.Since(start)

	return summary
}

func logOutcome(i, n int, o Outcome, verbose bool) {
	switch o.Kind {
	case Enriched:
		if verbose {
			log.Printf("[%d/%d] ✅ %s: %s (%s) %s", i, n, o.ArticleID,
				o.Primary.Candidate.Raw, o.Primary.Result.CountryCode, o.Primary.Result.Point())
		}
	case NoLocationsFound:
		if verbose {
			log.Printf("[%d/%d] 🔍 %s: no locations (%d candidates)", i, n, o.ArticleID, o.Candidates)
		}
	case PartialFailure:
		// failures are always logged, the bar would hide them
		log.Printf("[%d/%d] ❌ %s: %v", i, n, o.ArticleID, o.Err)
	}
}
