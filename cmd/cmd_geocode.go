// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/utils/textutils"
)

var geocodeOptions struct {
	Country string
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <lugar>",
	Short: "Geocodifica un lugar con la misma cadena que usa enrich (caché, gazetteer, proveedor)",
	Example: `  geonoticias geocode "Mar del Plata"
  geonoticias geocode --country uy Atlántida`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer p.Close()

		raw := strings.Join(args, " ")
		c := extract.Candidate{Raw: raw, Normalized: textutils.Normalize(raw)}

		res := p.resolver.Resolve(cmd.Context(), c, strings.ToLower(geocodeOptions.Country))
		if !res.Resolved {
			return fmt.Errorf("❌ %q: %w", raw, res.Err)
		}

		log.Printf("📍 %q resolved from %s", raw, res.Tier)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(res.Result)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Administra la caché de geocodificación",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [lugar]",
	Short: "Borra la caché, o solo las entradas de un lugar (con y sin país)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer p.Close()

		query := strings.Join(args, " ")
		if err := p.resolver.ClearCache(cmd.Context(), query); err != nil {
			return err
		}

		if query == "" {
			log.Printf("✅ Geocoding cache cleared (%s)", cfg.Cache.Backend)
		} else {
			log.Printf("✅ Cache entries for %q removed", query)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	geocodeCmd.Flags().StringVar(
		&geocodeOptions.Country,
		"country",
		"",
		"País del artículo (código ISO), usado como pista y para el reintento",
	)
}
