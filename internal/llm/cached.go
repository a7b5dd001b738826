// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"procport/cli/internal/cache"
	"procport/cli/internal/logging"

	"github.com/pterm/pterm"
)

// CacheKey derives the cache key of a request: the md5 hex digest of the
// canonical JSON of chat history, model, max tokens and JSON mode, with object
// keys sorted. The fixed system prompt is not part of the key.
func CacheKey(req Request) (string, error) {
	history := make([]map[string]string, len(req.Messages))
	for i, m := range req.Messages {
		history[i] = map[string]string{"role": m.Role, "content": m.Content}
	}
	// encoding/json sorts map keys, which gives the canonical form.
	data, err := json.Marshal(map[string]any{
		"chat_history": history,
		"model":        req.Model,
		"max_tokens":   req.MaxTokens,
		"json_mode":    req.JSONMode,
	})
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Cached serves repeated requests from a cache.Store.
type Cached struct {
	next  Client
	store cache.Store
	log   *pterm.Logger
}

// NewCached wraps next with store. log may be nil.
func NewCached(next Client, store cache.Store, log *pterm.Logger) *Cached {
	if log == nil {
		log = logging.Discard()
	}
	return &Cached{next: next, store: store, log: log}
}

func (c *Cached) Complete(ctx context.Context, req Request) (Response, error) {
	key, err := CacheKey(req)
	if err != nil {
		return Response{}, err
	}

	if content, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn("cache read failed", c.log.Args("key", key, "error", err))
	} else if ok {
		c.log.Info("Load from cache", c.log.Args("key", key))
		c.log.Trace("cached response", c.log.Args("content", content))
		return Response{Content: content, Cached: true}, nil
	}

	resp, err := c.next.Complete(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if resp.Content != "" {
		if err := c.store.Put(ctx, key, resp.Content); err != nil {
			c.log.Warn("cache write failed", c.log.Args("key", key, "error", err))
		}
	}
	return resp, nil
}
