// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"procport/cli/internal/keychain"
	"procport/cli/internal/llm"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears every credential procport keeps in the OS keychain.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove all saved API keys and database credentials",
	Long: `The logout command removes every provider API key and the saved publish
database connection from the OS keychain. Environment variables and .env files
are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Warning.WithWriter(cmd.OutOrStdout()).Println("Secure storage is not available on this system; nothing to remove")
			return nil
		}
		if err := km.ClearAll(llm.Providers...); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("All saved credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
