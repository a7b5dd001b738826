// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"procport/cli/internal/convert"
	"procport/cli/internal/progress"
	"procport/cli/internal/session"
	"procport/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	convertFlags runFlags
	outputDir    string
	keepGoing    bool
	resetFirst   bool
)

// convertCmd runs a conversion of every .sql file in the working directory.
var convertCmd = &cobra.Command{
	Use:     "convert [DIR]",
	Aliases: []string{"run"},
	Short:   "Convert the PL/SQL files in DIR to Java",
	Long: `The convert command scans DIR for .sql files, asks the model which packages
each file references, and converts the files in dependency order. Every converted
file adds its public signatures to a symbol table that is sent with later files.

Without --output-dir the generated code is printed to stdout. Progress is saved in
DIR/.progress.json after each file; running the command again skips finished files.`,
	Example: `  procport convert ./plsql --output-dir ./java
  procport convert --working-dir ./plsql --provider ollama --keep-going`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	workDir, err := resolveWorkDir(cmd, args)
	if err != nil {
		return err
	}
	if resetFirst {
		if err := progress.Remove(progress.Path(workDir)); err != nil {
			return err
		}
		logger.Info("Checkpoint removed", logger.Args("dir", workDir))
	}

	interactive := outputDir != "" && terminal.IsInteractive(os.Stdout) && terminal.IsInteractive(os.Stderr)
	if interactive && logLevel == "" && !verbose {
		// The live area already shows each file.
		logger = logger.WithLevel(pterm.LogLevelWarn)
	}

	renderer := session.NewRenderer(cmd.ErrOrStderr(), interactive)
	defer renderer.Close()

	p, closeClient, err := openProcessor(cmd, workDir, &convertFlags,
		convert.Options{OutputDir: outputDir, KeepGoing: keepGoing}, renderer.Handle)
	if err != nil {
		return err
	}
	defer closeClient()

	err = p.Process(cmd.Context())
	renderer.PrintSummary()
	return err
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addWorkDirFlag(convertCmd)
	addRunFlags(convertCmd, &convertFlags)
	convertCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write <file>.java under this directory instead of stdout")
	convertCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue after a failed file, skipping files that depend on it")
	convertCmd.Flags().BoolVar(&resetFirst, "reset", false, "Discard the checkpoint and start over")
}
