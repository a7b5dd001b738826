// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm defines the completion client used for both reference analysis and
// code generation, with provider implementations for OpenAI-compatible endpoints,
// Gemini and a local ollama, plus a caching decorator.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// SystemPrompt is prepended to every conversation sent to a provider.
const SystemPrompt = "You are a helpful assistant."

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	Messages  []Message
	Model     string
	MaxTokens int
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}

// Response carries the model output.
type Response struct {
	Content string
	// Cached is set when the response was served from the cache.
	Cached bool
}

// Client completes chat requests.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// withSystem returns the messages a provider actually receives.
func withSystem(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Message{Role: RoleSystem, Content: SystemPrompt})
	return append(out, msgs...)
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ExtractJSON trims surrounding prose and markdown fences from a model answer
// that should be a single JSON object.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "{") {
		return s
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
