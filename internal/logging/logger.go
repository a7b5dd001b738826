// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// Options configures the CLI logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error, disabled, matched
	// case-insensitively.
	Level  string
	Format string // text|json
	Writer io.Writer
}

// ParseLevel maps a level name to a pterm log level. Unknown names yield info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error", "critical", "fatal":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// New builds a pterm logger writing to opts.Writer.
func New(opts Options) *pterm.Logger {
	l := pterm.DefaultLogger.
		WithLevel(ParseLevel(opts.Level)).
		WithTime(true).
		WithCaller(false)
	if opts.Writer != nil {
		l = l.WithWriter(opts.Writer)
	}
	if strings.EqualFold(opts.Format, "json") {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return l
}

// Discard returns a logger that drops everything; used by tests and library callers
// that did not configure logging.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}
