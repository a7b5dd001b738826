// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"procport/cli/internal/keychain"
	"procport/cli/internal/llm"
	"procport/cli/internal/secure"
	"procport/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loginProvider string

// loginCmd stores a provider API key in the OS keychain.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a model provider API key in the OS keychain",
	Long: `The login command prompts for an API key and stores it in the OS keychain,
so it does not have to live in shell history or .env files. Environment variables
(OPENAI_API_KEY, GEMINI_API_KEY) still take precedence when set.

ollama runs locally and needs no key.`,
	Example: `  procport login
  procport login --provider gemini`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(loginProvider)
		if provider == "" {
			provider = cfg.Provider
		}
		if !secure.RequiresAPIKey(provider) {
			if provider == llm.ProviderOllama {
				pterm.Info.WithWriter(cmd.OutOrStdout()).Println("ollama needs no API key")
				return nil
			}
			return fmt.Errorf("unknown provider %q (use one of %s)", provider, strings.Join(llm.Providers, ", "))
		}

		key, err := terminal.ReadSecret(fmt.Sprintf("Enter %s API key: ", provider), os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if key == "" {
			return errors.New("API key is required")
		}

		km, err := keychain.GetManager()
		if err != nil {
			pterm.Error.WithWriter(cmd.ErrOrStderr()).Println("Secure storage is not available on this system.")
			pterm.Fprintln(cmd.ErrOrStderr(), "   Set "+secure.APIKeyEnv(provider)[0]+" in the environment or a .env file instead.")
			return err
		}
		if err := km.SaveAPIKey(provider, key); err != nil {
			return fmt.Errorf("save API key: %w", err)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("API key for " + provider + " saved to the OS keychain")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "Provider the key belongs to: openai or gemini (default from config)")
}
