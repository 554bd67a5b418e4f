// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/observatorio/geonoticias/news"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Medios conocidos y el país que se les asigna a sus artículos",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los medios conocidos",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b, c, d := strings.Repeat("─", 2), strings.Repeat("─", 20), strings.Repeat("─", 4), strings.Repeat("─", 40)
		fmt.Println("Medios conocidos:")
		fmt.Printf("╭─%2s─┬─%-20s─┬─%-4s─┬─%-40s╮\n", a, b, c, d)
		fmt.Printf("│ %2s │ %-20s │ %-4s │ %-40s│\n", "Id", "Nombre", "País", "Dominios")
		fmt.Printf("├─%2s─┼─%-20s─┼─%-4s─┼─%-40s┤\n", a, b, c, d)
		err := news.EachSource(func(s news.Source) error {
			fmt.Printf("│ %2d │ %-20s │ %-4s │ %-40s│\n", s.ID, s.Name, s.Country, strings.Join(s.Domains, ", "))

			return nil
		})
		fmt.Printf("╰─%2s─┴─%-20s─┴─%-4s─┴─%-40s╯\n", a, b, c, d)

		return err
	},
}

var sourcesShowCmd = &cobra.Command{
	Use:   "show <id|nombre|url>",
	Short: "Muestra el medio y el país que corresponde a un id, nombre o url",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		q := args[0]

		if strings.Contains(q, ".") {
			if s, ok := news.SourceForURL(q); ok {
				fmt.Printf("%d\t%s\t%s\n", s.ID, s.Name, s.Country)

				return nil
			}

			if cc := news.CountryForURL(q); cc != "" {
				fmt.Printf("-\t(dominio de país)\t%s\n", cc)

				return nil
			}

			return fmt.Errorf("no country known for %q", q)
		}

		s, err := news.FindSource(q)
		if err != nil {
			return err
		}

		fmt.Printf("%d\t%s\t%s\n", s.ID, s.Name, s.Country)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesShowCmd)
}
