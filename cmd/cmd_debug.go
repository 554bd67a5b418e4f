// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/config"
	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/gazetteer"
	"github.com/observatorio/geonoticias/utils/htmlutils"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Muestra los candidatos que el extractor encuentra en cada línea",
	Long: `Lee un texto por línea, e imprime en stdout el texto seguido de los
candidatos encontrados.

$ echo "Choque en la ruta 2 cerca de Mar del Plata" | geonoticias debug extract
Choque en la ruta 2 cerca de Mar del Plata	[{"raw":"Mar del Plata",…}]
	`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		gaz := gazetteer.Default()
		ignore := []string(nil)

		if config.Path(rootOptions.ConfigPath) != "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if gaz, err = buildGazetteer(cfg); err != nil {
				return err
			}

			ignore = cfg.Extraction.IgnoreWords
		}

		extractor := extract.New(gaz, ignore...)

		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Ingrese textos a analizar, uno por línea…")
		}

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()

			text, err := htmlutils.ToText(line)
			if err != nil {
				text = line
			}

			candidates := extractor.Extract(text, nil)
			if candidates == nil {
				candidates = []extract.Candidate{}
			}

			s, err := json.Marshal(candidates)
			if err != nil {
				return err
			}

			fmt.Printf("%s\t%s\n", line, s)
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugExtractCmd)
}
