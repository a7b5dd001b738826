// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type turn struct {
	role string
	text string
}

func turns(contents []*genai.Content) []turn {
	var out []turn
	for _, c := range contents {
		var text string
		for _, p := range c.Parts {
			text += p.Text
		}
		out = append(out, turn{role: c.Role, text: text})
	}
	return out
}

func TestGeminiContents(t *testing.T) {
	tests := []struct {
		name       string
		msgs       []Message
		wantTurns  []turn
		wantSystem string
	}{
		{
			name:       "system split from user",
			msgs:       withSystem([]Message{{Role: RoleUser, Content: "convert this"}}),
			wantTurns:  []turn{{"user", "convert this"}},
			wantSystem: SystemPrompt,
		},
		{
			name: "assistant becomes model",
			msgs: withSystem([]Message{
				{Role: RoleUser, Content: "q"},
				{Role: RoleAssistant, Content: "a"},
				{Role: RoleUser, Content: "again"},
			}),
			wantTurns:  []turn{{"user", "q"}, {"model", "a"}, {"user", "again"}},
			wantSystem: SystemPrompt,
		},
		{
			name: "system-only prompt is promoted to a user turn",
			msgs: withSystem([]Message{
				{Role: RoleSystem, Content: "first"},
				{Role: RoleSystem, Content: "second"},
			}),
			wantTurns:  []turn{{"user", "first\n\nsecond"}},
			wantSystem: SystemPrompt,
		},
		{
			name:       "lone system message stays a system instruction",
			msgs:       withSystem(nil),
			wantSystem: SystemPrompt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents, system := geminiContents(tt.msgs)
			assert.Equal(t, tt.wantTurns, turns(contents))
			assert.Equal(t, tt.wantSystem, system)
		})
	}
}

func TestGeminiConfig(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantMax  int32
		wantMIME string
	}{
		{name: "json mode", req: Request{MaxTokens: 16384, JSONMode: true}, wantMax: 16384, wantMIME: "application/json"},
		{name: "plain text", req: Request{MaxTokens: 10}, wantMax: 10},
		{name: "no limit", req: Request{JSONMode: true}, wantMIME: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := geminiConfig(tt.req, "be terse")
			assert.Equal(t, tt.wantMax, cfg.MaxOutputTokens)
			assert.Equal(t, tt.wantMIME, cfg.ResponseMIMEType)
			require.NotNil(t, cfg.SystemInstruction)
			require.Len(t, cfg.SystemInstruction.Parts, 1)
			assert.Equal(t, "be terse", cfg.SystemInstruction.Parts[0].Text)
		})
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	assert.ErrorContains(t, err, "API key is required")

	c, err := NewGeminiClient(context.Background(), "AIza-test", "http://127.0.0.1:1")
	require.NoError(t, err)
	assert.NotNil(t, c)
}
