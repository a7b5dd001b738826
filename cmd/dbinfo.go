// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"procport/cli/internal/dsn"
	"procport/cli/internal/secure"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd shows the publish database with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the configured publish database connection",
	Long: `The dbinfo command displays the database connection string (DSN) used by
'procport publish', with the password masked. PROCPORT_DSN and DATABASE_URL take
precedence over the DSN saved by 'procport connect'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		raw, src, err := secure.ResolveDSN(secure.DefaultKeyStore())
		if err != nil {
			pterm.Warning.WithWriter(out).Println("No database connection configured")
			pterm.Fprintln(out, "   Please run: procport connect")
			return nil
		}
		if src == secure.SourceEnv {
			pterm.Fprintln(out, "Using DSN from environment")
		} else {
			pterm.Fprintln(out, "Using DSN from OS keychain")
		}
		pterm.Fprintln(out)

		masked := "(unparseable DSN)"
		if info, err := dsn.Parse(raw); err == nil {
			masked = info.Masked()
		}
		box(out, "Database Connection", masked)
		pterm.Fprintln(out)
		pterm.Fprintln(out, "To update this connection, run: procport connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
