// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

func TestParseProviderError(t *testing.T) {
	tests := []struct {
		msg  string
		want ProviderErrorType
	}{
		{"openai: status 401: Incorrect API key provided", ProviderErrorAuth},
		{"openai: status 429: Rate limit reached for gpt-4o", ProviderErrorRateLimit},
		{"This model's maximum context length is 128000 tokens", ProviderErrorContextLength},
		{"openai: status 404: The model `gpt-9` does not exist", ProviderErrorModel},
		{"context deadline exceeded", ProviderErrorTimeout},
		{"openai: status 503: overloaded", ProviderErrorUnavailable},
		{"something odd", ProviderErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := ParseProviderError(tt.msg); got != tt.want {
				t.Errorf("ParseProviderError(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestFormatProviderError_MasksDetails(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	out := FormatProviderError("openai", "status 401: Incorrect API key provided: sk-abcdefghijkl")
	if !strings.Contains(out, "procport login") {
		t.Errorf("expected login hint, got:\n%s", out)
	}
	if strings.Contains(out, "sk-abcdefghijkl") {
		t.Errorf("API key leaked:\n%s", out)
	}
}
