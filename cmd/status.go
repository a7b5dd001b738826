// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"procport/cli/internal/graph"
	"procport/cli/internal/progress"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd reports checkpoint progress without calling the model.
var statusCmd = &cobra.Command{
	Use:   "status [DIR]",
	Short: "Show conversion progress for DIR",
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
		out := cmd.OutOrStdout()
		if !st.HasGraph() {
			pterm.Fprintln(out, "No dependency graph yet. Run 'procport plan' or 'procport convert'.")
			return nil
		}

		order, cycles := graph.FromMap(st.Graph).Order()
		remaining := st.Remaining()
		pterm.Fprintln(out, fmt.Sprintf("Files:     %d", len(order)))
		pterm.Fprintln(out, fmt.Sprintf("Converted: %d", len(order)-len(remaining)))
		pterm.Fprintln(out, fmt.Sprintf("Remaining: %d", len(remaining)))
		pterm.Fprintln(out, fmt.Sprintf("Symbols:   %d", len(st.Symbols())))
		if len(cycles) > 0 {
			pterm.Fprintln(out, fmt.Sprintf("Cycles:    %d", len(cycles)))
		}
		if len(remaining) > 0 {
			pterm.Fprintln(out)
			pterm.Fprintln(out, "Pending files:")
			for _, f := range remaining {
				pterm.Fprintln(out, "  "+f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addWorkDirFlag(statusCmd)
}
