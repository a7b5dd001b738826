// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"procport/cli/internal/progress"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	resetCache    bool
	resetCacheDir string
)

// resetCmd removes the checkpoint so the next convert starts from scratch.
var resetCmd = &cobra.Command{
	Use:   "reset [DIR]",
	Short: "Delete the checkpoint (and optionally the response cache) of DIR",
	Long: `The reset command deletes DIR/.progress.json. The next convert rebuilds the
dependency graph and converts every file again. Cached model answers are kept
unless --cache is given, so a reset run is usually fast and free.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := resolveWorkDir(cmd, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := progress.Remove(progress.Path(workDir)); err != nil {
			return err
		}
		pterm.Success.WithWriter(out).Println("Checkpoint removed")

		if resetCache {
			dir := cacheDirFor(workDir, resetCacheDir)
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			pterm.Success.WithWriter(out).Println("Response cache removed: " + dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	addWorkDirFlag(resetCmd)
	resetCmd.Flags().BoolVar(&resetCache, "cache", false, "Also delete the response cache")
	resetCmd.Flags().StringVar(&resetCacheDir, "cache-dir", "", "Response cache directory, relative to the working directory (default .cached)")
}
