// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"procport/cli/internal/analysis"
	"procport/cli/internal/cache"
	"procport/cli/internal/config"
	"procport/cli/internal/convert"
	"procport/cli/internal/llm"
	"procport/cli/internal/prompt"
	"procport/cli/internal/secure"
	"procport/cli/internal/session"

	"github.com/spf13/cobra"
)

// workDirHint returns the working directory named on the command line, if
// any, without validating it. Used to find a project .env before config loads.
func workDirHint(cmd *cobra.Command, args []string) string {
	if f := cmd.Flags().Lookup("working-dir"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if len(args) > 0 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return args[0]
		}
	}
	return ""
}

// resolveWorkDir picks the working directory from the positional argument or
// --working-dir and checks that it is a directory.
func resolveWorkDir(cmd *cobra.Command, args []string) (string, error) {
	var dir string
	flagDir, _ := cmd.Flags().GetString("working-dir")
	switch {
	case len(args) > 0 && flagDir != "" && filepath.Clean(args[0]) != filepath.Clean(flagDir):
		return "", fmt.Errorf("working directory given twice: %q and --working-dir %q", args[0], flagDir)
	case len(args) > 0:
		dir = args[0]
	case flagDir != "":
		dir = flagDir
	default:
		return "", errors.New("a working directory is required: procport " + cmd.Name() + " DIR")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %s is not a directory", dir)
	}
	return dir, nil
}

func addWorkDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("working-dir", "", "Directory containing the .sql files (alternative to the DIR argument)")
}

// runFlags are the model and cache options shared by commands that may call
// the model.
type runFlags struct {
	provider     string
	model        string
	maxTokens    int
	concurrency  int
	noCache      bool
	cacheDir     string
	cacheBackend string
	prompts      string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: openai, gemini or ollama")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "Maximum tokens per answer (default 16384)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Parallel reference extraction calls (default 4)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Always call the provider; do not read or write the response cache")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "Response cache directory, relative to the working directory (default .cached)")
	cmd.Flags().StringVar(&f.cacheBackend, "cache-backend", "", "Response cache backend: dir or sqlite")
	cmd.Flags().StringVar(&f.prompts, "prompts", "", "YAML file overriding the parse_refs/generate_java prompts (default DIR/prompts.yaml)")
}

func (f *runFlags) providerName() string {
	if f.provider != "" {
		return f.provider
	}
	return cfg.Provider
}

func (f *runFlags) modelName() string {
	switch {
	case f.model != "":
		return f.model
	case cfg.Model != "" && cfg.Model != config.DefaultModel:
		return cfg.Model
	default:
		return llm.DefaultModel(f.providerName())
	}
}

func (f *runFlags) tokens() int {
	if f.maxTokens > 0 {
		return f.maxTokens
	}
	return cfg.MaxTokens
}

func (f *runFlags) parallel() int {
	switch {
	case f.concurrency > 0:
		return f.concurrency
	case cfg.Concurrency > 0:
		return cfg.Concurrency
	default:
		return analysis.DefaultConcurrency
	}
}

func cacheDirFor(workDir, dir string) string {
	if dir == "" {
		dir = cfg.Cache.Dir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workDir, dir)
}

// newClient builds the provider client, wrapped in the response cache unless
// disabled. The API key is resolved on the first request that reaches the
// provider. The returned close function releases the cache.
func newClient(cmd *cobra.Command, workDir string, f *runFlags) (llm.Client, func(), error) {
	provider := f.providerName()
	activeProvider = provider
	opts := llm.Options{Provider: provider}
	switch provider {
	case llm.ProviderOpenAI, "":
		opts.BaseURL = cfg.OpenAI.BaseURL
	case llm.ProviderOllama:
		opts.BaseURL = cfg.Ollama.BaseURL
	}

	client := llm.Lazy(func(ctx context.Context) (llm.Client, error) {
		if secure.RequiresAPIKey(provider) {
			key, src, err := secure.ResolveAPIKey(provider, secure.DefaultKeyStore())
			if err != nil {
				return nil, err
			}
			logger.Debug("using API key", logger.Args("provider", provider, "source", string(src)))
			opts.APIKey = key
		}
		return llm.New(ctx, opts)
	})
	if f.noCache || !cfg.Cache.Enabled {
		return client, func() {}, nil
	}

	backend := f.cacheBackend
	if backend == "" {
		backend = cfg.Cache.Backend
	}
	store, err := cache.Open(backend, cacheDirFor(workDir, f.cacheDir))
	if err != nil {
		return nil, nil, err
	}
	return llm.NewCached(client, store, logger), func() { _ = store.Close() }, nil
}

// openProcessor wires a convert.Processor for workDir. It builds the
// dependency graph when the checkpoint has none.
func openProcessor(cmd *cobra.Command, workDir string, f *runFlags, opts convert.Options, events session.Sink) (*convert.Processor, func(), error) {
	client, closeFn, err := newClient(cmd, workDir, f)
	if err != nil {
		return nil, nil, err
	}
	prompts, err := prompt.Load(prompt.Resolve(f.prompts, workDir))
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	opts.WorkDir = workDir
	opts.Client = client
	opts.Prompts = prompts
	opts.Model = f.modelName()
	opts.MaxTokens = f.tokens()
	opts.Concurrency = f.parallel()
	opts.Log = logger
	opts.Events = events
	if opts.Stdout == nil {
		opts.Stdout = cmd.OutOrStdout()
	}

	logger.Debug("starting", logger.Args("dir", workDir, "provider", f.providerName(), "model", opts.Model))
	p, err := convert.New(cmd.Context(), opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}
