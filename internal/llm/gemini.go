// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client with the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini API client. baseURL is optional and mostly
// useful for proxies.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Complete maps the chat onto GenerateContent. System messages become the
// system instruction; assistant turns use the "model" role.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	contents, system := geminiContents(withSystem(req.Messages))
	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, geminiConfig(req, system))
	if err != nil {
		return Response{}, fmt.Errorf("gemini: generate content: %w", err)
	}
	text := result.Text()
	if text == "" {
		return Response{}, errors.New("gemini: no completion returned")
	}
	return Response{Content: text}, nil
}

func geminiConfig(req Request, system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func geminiContents(msgs []Message) ([]*genai.Content, string) {
	var system []string
	var contents []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 && len(system) > 1 {
		// GenerateContent needs at least one turn; promote the caller's prompt.
		contents = append(contents, genai.NewContentFromText(strings.Join(system[1:], "\n\n"), genai.RoleUser))
		system = system[:1]
	}
	return contents, strings.Join(system, "\n\n")
}
