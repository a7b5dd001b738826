// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can pick a presentation per category
// while the underlying cause stays reachable through errors.Is and errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ScanFailed indicates the working directory could not be walked.
	ScanFailed Kind = "scan_failed"
	// AnalysisFailed indicates reference extraction for a file failed.
	AnalysisFailed Kind = "analysis_failed"
	// GenerationFailed indicates Java generation for a file failed.
	GenerationFailed Kind = "generation_failed"
	// MalformedResponse indicates the model returned output we could not decode.
	MalformedResponse Kind = "malformed_response"
	// MissingCredential indicates no API key was found in env or keychain.
	MissingCredential Kind = "missing_credential"
	// ProviderFailed indicates the completion provider rejected or failed a request.
	ProviderFailed Kind = "provider_failed"
	// ProgressCorrupt indicates the checkpoint file could not be read.
	ProgressCorrupt Kind = "progress_corrupt"
	// OutputFailed indicates generated code could not be written.
	OutputFailed Kind = "output_failed"
	// PublishFailed indicates the checkpoint could not be written to the database.
	PublishFailed Kind = "publish_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
