// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/config"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootOptions struct {
	ConfigPath          string
	DBPath              string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

var rootCmd = &cobra.Command{
	Use:   "geonoticias",
	Short: "ubica geográficamente las noticias",
	Long: `
geonoticias extrae los lugares mencionados en artículos periodísticos, los
geocodifica (caché, gazetteer y proveedor externo) y guarda la ubicación
principal de cada artículo para poder mostrarlo en un mapa.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Path(rootOptions.ConfigPath))
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("db-path") {
		cfg.DBPath = rootOptions.DBPath
	}

	return cfg, nil
}

func userAgent() string {
	return fmt.Sprintf("geonoticias/%s (+https://github.com/observatorio/geonoticias)", Version)
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.ConfigPath,
		"config",
		"",
		"Archivo de configuración YAML (por defecto $"+config.EnvConfigPath+")",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.DBPath,
		"db-path",
		"db",
		"Directorio base donde almacenar el estado",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
