// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazy_OpensOnce(t *testing.T) {
	var opened atomic.Int32
	c := Lazy(func(context.Context) (Client, error) {
		opened.Add(1)
		return ClientFunc(func(_ context.Context, req Request) (Response, error) {
			return Response{Content: req.Model}, nil
		}), nil
	})
	assert.Zero(t, opened.Load(), "nothing is opened before the first call")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Complete(context.Background(), Request{Model: "m"})
			assert.NoError(t, err)
			assert.Equal(t, "m", resp.Content)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), opened.Load())
}

func TestLazy_OpenError(t *testing.T) {
	boom := errors.New("no API key")
	calls := 0
	c := Lazy(func(context.Context) (Client, error) {
		calls++
		return nil, boom
	})
	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), Request{})
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 1, calls)
}
