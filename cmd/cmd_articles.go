// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/news"
	"github.com/observatorio/geonoticias/utils/textutils"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Artículos y sus ubicaciones",
}

var articlesImportCmd = &cobra.Command{
	Use:   "import <file.json>...",
	Short: "Importa artículos desde archivos JSON (un arreglo de artículos por archivo)",
	Long: `Importa artículos desde archivos JSON. Cada archivo contiene un arreglo:

[{"id": "a1", "title": "…", "body": "…", "url": "https://…", "published_at": "2025-03-01T10:00:00Z"}]

Cuando falta source_country_hint se deduce del dominio de la url. Reimportar
un artículo reemplaza su título y cuerpo, pero no sus ubicaciones.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, repo, err := openRepository(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		total := 0

		for _, path := range args {
			articles, err := news.LoadArticles(path)
			if err != nil {
				return err
			}

			n, err := repo.SaveArticles(cmd.Context(), articles)
			if err != nil {
				return fmt.Errorf("saving articles of %s: %w", path, err)
			}

			log.Printf("✅ %s: %s artículos", path, textutils.FormatInt(int64(n)))

			total += n
		}

		log.Printf("Importados %s artículos de %d archivos", textutils.FormatInt(int64(total)), len(args))

		return nil
	},
}

var articlesListOptions news.ArticleFilter

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los artículos almacenados, los más recientes primero",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, repo, err := openRepository(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := repo.ListArticles(cmd.Context(), articlesListOptions)
		if err != nil {
			return err
		}

		for _, a := range articles {
			published := "-"
			if !a.PublishedAt.IsZero() {
				published = a.PublishedAt.Format("2006-01-02")
			}

			hint := a.SourceCountryHint
			if hint == "" {
				hint = "--"
			}

			fmt.Printf("%-20s %s %s %s\n", a.ID, published, hint, a.Title)
		}

		return nil
	},
}

var articlesLocationsCmd = &cobra.Command{
	Use:   "locations [article-id]",
	Short: "Muestra las ubicaciones resueltas (de un artículo o de todos) como JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, repo, err := openRepository(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		id := ""
		if len(args) == 1 {
			id = args[0]
			if _, err := repo.GetArticle(cmd.Context(), id); err != nil {
				return err
			}
		}

		locations, err := repo.ListLocations(cmd.Context(), id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		for _, l := range locations {
			if err := enc.Encode(l); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(articlesCmd)
	articlesCmd.AddCommand(articlesImportCmd)
	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesLocationsCmd)

	articlesListCmd.Flags().BoolVar(
		&articlesListOptions.OnlyUnresolved,
		"unresolved",
		false,
		"Solo artículos sin ubicaciones",
	)
	articlesListCmd.Flags().IntVar(
		&articlesListOptions.Limit,
		"limit",
		50,
		"Cantidad máxima de artículos (0 lista todos)",
	)
}
