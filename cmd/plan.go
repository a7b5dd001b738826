// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"procport/cli/internal/convert"
	"procport/cli/internal/graph"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var planFlags runFlags

// planCmd prints the order in which convert would process the files.
var planCmd = &cobra.Command{
	Use:   "plan [DIR]",
	Short: "Show the dependency graph and conversion order",
	Long: `The plan command prints the order convert will use, with each file's
dependencies and whether it is already converted. When DIR has no checkpoint the
dependency graph is built first, which calls the model once per file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := resolveWorkDir(cmd, args)
		if err != nil {
			return err
		}
		p, closeClient, err := openProcessor(cmd, workDir, &planFlags, convert.Options{}, nil)
		if err != nil {
			return err
		}
		defer closeClient()

		order, cycles := p.Plan()
		st := p.State()
		data := pterm.TableData{{"#", "File", "Depends on", "Status"}}
		for i, f := range order {
			status := "pending"
			if st.IsProcessed(f) {
				status = "converted"
			}
			data = append(data, []string{fmt.Sprint(i + 1), f, strings.Join(st.Graph[f], ", "), status})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		pterm.Fprintln(out, table)

		if len(cycles) > 0 {
			pterm.Fprintln(out)
			pterm.Warning.WithWriter(out).Println("Dependency cycles; these edges are ignored when ordering:")
			pterm.Fprintln(out, indent(graph.FormatCycles(cycles)))
		}
		return nil
	},
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(planCmd)
	addWorkDirFlag(planCmd)
	addRunFlags(planCmd, &planFlags)
}
