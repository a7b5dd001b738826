// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// ProviderErrorType represents the category of a completion provider failure.
type ProviderErrorType int

const (
	ProviderErrorUnknown ProviderErrorType = iota
	ProviderErrorAuth
	ProviderErrorRateLimit
	ProviderErrorContextLength
	ProviderErrorTimeout
	ProviderErrorUnavailable
	ProviderErrorModel
)

// ParseProviderError categorizes a provider error message.
func ParseProviderError(errMsg string) ProviderErrorType {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "status 401"), strings.Contains(lower, "status 403"),
		strings.Contains(lower, "invalid api key"), strings.Contains(lower, "incorrect api key"),
		strings.Contains(lower, "unauthorized"), strings.Contains(lower, "permission_denied"):
		return ProviderErrorAuth
	case strings.Contains(lower, "status 429"), strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "resource_exhausted"), strings.Contains(lower, "insufficient_quota"):
		return ProviderErrorRateLimit
	case strings.Contains(lower, "context_length_exceeded"), strings.Contains(lower, "maximum context length"),
		strings.Contains(lower, "too many tokens"):
		return ProviderErrorContextLength
	case strings.Contains(lower, "model_not_found"), strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "status 404"):
		return ProviderErrorModel
	case strings.Contains(lower, "deadline"), strings.Contains(lower, "timeout"):
		return ProviderErrorTimeout
	case strings.Contains(lower, "status 5"), strings.Contains(lower, "unavailable"),
		strings.Contains(lower, "overloaded"):
		return ProviderErrorUnavailable
	}
	return ProviderErrorUnknown
}

// FormatProviderError formats a completion provider error in a user-friendly way.
func FormatProviderError(provider, errMsg string) string {
	errType := ParseProviderError(errMsg)

	var builder strings.Builder
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("Conversion request to %s failed", provider))
	builder.WriteString("\n\n")

	switch errType {
	case ProviderErrorAuth:
		builder.WriteString("The provider rejected the API key.\n")
		builder.WriteString("To fix this:\n")
		builder.WriteString("  • Check the key exported in the environment or .env file\n")
		builder.WriteString("  • Or store a new key with 'procport login'\n")
	case ProviderErrorRateLimit:
		builder.WriteString("The provider is rate limiting requests or the quota is used up.\n")
		builder.WriteString("Completed files are saved; re-run the same command to resume.\n")
		builder.WriteString("  • Lower --concurrency to reduce parallel analysis calls\n")
	case ProviderErrorContextLength:
		builder.WriteString("The stored procedure is too large for the model's context window.\n")
		builder.WriteString("  • Split the package into smaller files\n")
		builder.WriteString("  • Or pick a model with a larger context via --model\n")
	case ProviderErrorModel:
		builder.WriteString("The requested model is not available for this account or endpoint.\n")
		builder.WriteString("  • Check --model and the provider base URL\n")
	case ProviderErrorTimeout:
		builder.WriteString("The provider took too long to respond.\n")
		builder.WriteString("Completed files are saved; re-run the same command to resume.\n")
	case ProviderErrorUnavailable:
		builder.WriteString("The provider is temporarily unavailable.\n")
		builder.WriteString("Completed files are saved; try again in a few minutes.\n")
	default:
		builder.WriteString("The request could not be completed.\n")
		builder.WriteString("Completed files are saved; re-run the same command to resume.\n")
	}

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}

	return builder.String()
}

// PresentProviderError writes a formatted provider error to w.
func PresentProviderError(w io.Writer, provider string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, FormatProviderError(provider, err.Error()))
	fmt.Fprintln(w)
}
