// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/enrich"
	"github.com/observatorio/geonoticias/news"
)

var enrichOptions struct {
	All     bool
	Since   string
	Limit   int
	Workers int
	Mode    string
}

// parseSince accepts a lookback ("72h") or a date ("2025-03-01").
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}

	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--since %q: want a duration (72h) or a date (2006-01-02)", s)
	}

	return t, nil
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [article-id]...",
	Short: "Resuelve y guarda la ubicación de los artículos",
	Long: `Extrae los lugares mencionados en cada artículo, los geocodifica y guarda
la ubicación principal (o todas, con --mode all).

Sin argumentos procesa los artículos que todavía no tienen ubicaciones; --all
reprocesa todos. Ctrl-C deja de tomar artículos nuevos y espera a los que
están en curso.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("workers") {
			cfg.Enrich.Workers = enrichOptions.Workers
		}

		if cmd.Flags().Changed("mode") {
			cfg.Enrich.Mode = enrichOptions.Mode
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		since, err := parseSince(enrichOptions.Since, time.Now())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				log.Printf("⚠️ closing: %v", err)
			}
		}()

		runner := enrich.NewRunner(p.orch, p.repo, cfg.Enrich.Workers)

		var summary *enrich.Summary

		if len(args) > 0 {
			articles := make([]*news.Article, 0, len(args))

			for _, id := range args {
				a, err := p.repo.GetArticle(ctx, id)
				if err != nil {
					return err
				}

				articles = append(articles, a)
			}

			summary = runner.RunArticles(ctx, articles)
			err = ctx.Err()
		} else {
			summary, err = runner.Run(ctx, news.ArticleFilter{
				OnlyUnresolved: !enrichOptions.All,
				Since:          since,
				Limit:          enrichOptions.Limit,
			})
		}

		if summary != nil {
			m := p.resolver.Metrics()
			log.Printf("📍 %s", summary)
			log.Printf("Geocoding - %d cache hits, %d gazetteer hits, %d provider calls (%d hits, %d retries), %d unresolved",
				m.CacheHits, m.GazetteerHits, m.ProviderCalls, m.ProviderHits, m.Retries, m.Unresolved)
		}

		if errors.Is(err, context.Canceled) && summary != nil {
			log.Printf("⚠️ Interrupted, %d articles left for the next run", summary.Skipped)

			return nil
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().BoolVar(
		&enrichOptions.All,
		"all",
		false,
		"Reprocesa todos los artículos y no solo los que no tienen ubicación",
	)
	enrichCmd.Flags().StringVar(
		&enrichOptions.Since,
		"since",
		"",
		"Solo artículos publicados desde una fecha (2006-01-02) o dentro de un período (72h)",
	)
	enrichCmd.Flags().IntVar(
		&enrichOptions.Limit,
		"limit",
		0,
		"Cantidad máxima de artículos a procesar",
	)
	enrichCmd.Flags().IntVar(
		&enrichOptions.Workers,
		"workers",
		0,
		"Artículos procesados en paralelo. Por defecto el valor de la configuración",
	)
	enrichCmd.Flags().StringVar(
		&enrichOptions.Mode,
		"mode",
		string(enrich.ModePrimary),
		"Ubicaciones a guardar: primary o all",
	)
}
