// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"procport/cli/internal/progress"
	"procport/cli/internal/publish"
	"procport/cli/internal/secure"
	"procport/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var publishModel string

// publishCmd uploads a finished or partial run to PostgreSQL.
var publishCmd = &cobra.Command{
	Use:   "publish [DIR]",
	Short: "Publish the dependency graph, generated code and symbols to PostgreSQL",
	Long: `The publish command writes the checkpoint of DIR to the database configured with
'procport connect' (or PROCPORT_DSN / DATABASE_URL): one row per run, one row per
source file with its dependencies and generated Java, and the symbol table. Tables
are created when missing. Generated code is only available for runs that used
--output-dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := resolveWorkDir(cmd, args)
		if err != nil {
			return err
		}
		st, err := progress.Load(progress.Path(workDir))
		if err != nil {
			return err
		}
		model := publishModel
		if model == "" {
			model = cfg.Model
		}
		run, err := publish.Build(workDir, model, st)
		if err != nil {
			return err
		}

		raw, _, err := secure.ResolveDSN(secure.DefaultKeyStore())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		err = spin(cmd.ErrOrStderr(), terminal.IsInteractive(os.Stderr), "publishing", func() error {
			pool, err := publish.Connect(cmd.Context(), raw)
			if err != nil {
				return err
			}
			defer pool.Close()
			return publish.Publish(cmd.Context(), pool, run)
		})
		if err != nil {
			return err
		}
		logger.Debug("published", logger.Args("run", run.ID.String(), "files", len(run.Files), "symbols", len(run.Symbols)))
		pterm.Success.WithWriter(out).Printfln("Published %d files and %d symbols", len(run.Files), len(run.Symbols))
		pterm.Fprintln(out, "Run ID: "+run.ID.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	addWorkDirFlag(publishCmd)
	publishCmd.Flags().StringVar(&publishModel, "model", "", "Model name recorded with the run (default from config)")
}
