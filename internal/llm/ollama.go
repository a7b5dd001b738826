// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient implements Client against a local ollama /api/chat endpoint.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

// ollamaRequest is the request body for the ollama /api/chat endpoint.
type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// ollamaResponse is the non-streaming response from /api/chat.
type ollamaResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// NewOllamaClient creates a client for the ollama instance at baseURL.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute // local models are slow on large packages
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete runs a deterministic (temperature 0) chat completion.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (Response, error) {
	opts := map[string]any{"temperature": 0}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	body := ollamaRequest{
		Model:    req.Model,
		Messages: withSystem(req.Messages),
		Stream:   false,
		Options:  opts,
	}
	if req.JSONMode {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling ollama request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Response{}, &APIError{Provider: "ollama", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return Response{}, fmt.Errorf("ollama: %s", out.Error)
	}
	return Response{Content: out.Message.Content}, nil
}
