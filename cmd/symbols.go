// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"strings"

	"procport/cli/internal/progress"
	"procport/cli/internal/publish"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	symbolsJSON   bool
	symbolsFilter string
)

// symbolsCmd lists the Oracle to Java signature mappings collected so far.
var symbolsCmd = &cobra.Command{
	Use:   "symbols [DIR]",
	Short: "List the symbol table built by previous conversions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := resolveWorkDir(cmd, args)
		if err != nil {
			return err
		}
		st, err := progress.Load(progress.Path(workDir))
		if err != nil {
			return err
		}

		filter := strings.ToUpper(symbolsFilter)
		var rows []publish.SymbolRow
		for _, s := range st.Symbols() {
			if filter != "" && !strings.Contains(strings.ToUpper(s), filter) {
				continue
			}
			rows = append(rows, publish.ParseSymbol(s))
		}

		out := cmd.OutOrStdout()
		if symbolsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if rows == nil {
				rows = []publish.SymbolRow{}
			}
			return enc.Encode(rows)
		}
		if len(rows) == 0 {
			pterm.Fprintln(out, "No symbols.")
			return nil
		}
		data := pterm.TableData{{"Oracle", "Java"}}
		for _, r := range rows {
			data = append(data, []string{r.Oracle, r.Java})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		pterm.Fprintln(out, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	addWorkDirFlag(symbolsCmd)
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "Print symbols as JSON")
	symbolsCmd.Flags().StringVar(&symbolsFilter, "filter", "", "Only show symbols containing this text (case-insensitive)")
}
