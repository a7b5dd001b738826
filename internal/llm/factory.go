// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Providers lists every supported provider.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderOllama}

// DefaultModel returns the model used when none is configured for provider.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOllama:
		return "qwen2.5-coder:7b"
	default:
		return "gpt-4o"
	}
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	APIKey   string
	// BaseURL overrides the provider endpoint; empty means the provider default.
	BaseURL string
	Timeout time.Duration
}

// New creates the client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			MaxRetries: 3,
		}), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, opts.BaseURL)
	case ProviderOllama:
		return NewOllamaClient(opts.BaseURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use one of %s)", opts.Provider, strings.Join(Providers, ", "))
	}
}
