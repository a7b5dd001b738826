// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for procport. It implements
// the conversion, inspection, credential and publish subcommands using the
// Cobra CLI framework and renders progress with pterm.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"procport/cli/internal/config"
	perr "procport/cli/internal/errors"
	"procport/cli/internal/httperrors"
	"procport/cli/internal/llm"
	"procport/cli/internal/logging"
	"procport/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	logLevel    string
	logFormat   string
	verbose     bool

	// activeProvider is the provider the current command talks to.
	activeProvider string

	// cfg and logger are set up before any subcommand runs.
	cfg    = config.Default()
	logger = logging.Discard()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "procport",
	Short: "Port Oracle stored procedures to Java with an LLM",
	Long: `procport reads the Oracle PL/SQL packages in a working directory, works out
which packages call which, and converts them to Java (MySQL JDBC) one file at a
time, dependencies first, so each conversion can reuse the signatures produced
before it. Progress is checkpointed in .progress.json and model answers are
cached, so interrupted runs resume where they stopped.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "procport %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// setup loads .env files and config, then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	dirs := []string{"."}
	if wd := workDirHint(cmd, args); wd != "" {
		dirs = append(dirs, wd)
	}
	if err := config.LoadDotEnv(dirs...); err != nil {
		return err
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	cfg = c

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	logger = logging.New(logging.Options{Level: level, Format: logFormat, Writer: os.Stderr})

	if !terminal.IsInteractive(os.Stdout) {
		pterm.DisableStyling()
	}
	return nil
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presentError(os.Stderr, err)
		return 1
	}
	return 0
}

// Execute runs the CLI application and exits with its status.
func Execute() {
	os.Exit(Run(os.Args[1:]))
}

// presentError prints err for a human: provider failures and network
// failures get a tailored explanation, everything else a masked one-liner.
func presentError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		pterm.Warning.WithWriter(w).Println("Interrupted; completed files are saved in the checkpoint")
		return
	}
	// A keep-going summary: the renderer already listed each failure.
	if kindErr, ok := err.(*perr.E); ok && kindErr.Kind == perr.GenerationFailed {
		pterm.Error.WithWriter(w).Println(kindErr.Message)
		return
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		logging.PresentProviderError(w, apiErr.Provider, err)
		return
	}
	if httperrors.Present(w, err, "contacting the model provider", providerHost()) {
		pterm.Fprintln(w)
	}
	pterm.Error.WithWriter(w).Println(logging.PresentError("", err))
}

func providerHost() string {
	provider := activeProvider
	if provider == "" {
		provider = cfg.Provider
	}
	switch provider {
	case llm.ProviderOllama:
		return httperrors.ExtractHostFromURL(cfg.Ollama.BaseURL)
	case llm.ProviderGemini:
		return "generativelanguage.googleapis.com"
	default:
		return httperrors.ExtractHostFromURL(cfg.OpenAI.BaseURL)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default from LOG_LEVEL or config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
