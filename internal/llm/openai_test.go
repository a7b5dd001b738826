// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(url string) *OpenAIClient {
	return NewOpenAIClient(OpenAIConfig{
		APIKey:       "sk-test",
		BaseURL:      url,
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"deps\":[]}"}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestOpenAI(srv.URL+"/").Complete(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "analyze"}},
		Model:     "gpt-4o",
		MaxTokens: 16384,
		JSONMode:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"deps":[]}`, resp.Content)
	assert.False(t, resp.Cached)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 16384, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: SystemPrompt}, got.Messages[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "analyze"}, got.Messages[1])
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestOpenAI(srv.URL).Complete(context.Background(), Request{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).Complete(context.Background(), Request{Model: "gpt-4o"})
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).Complete(context.Background(), Request{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(4), calls.Load())
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "API key not configured")
}
