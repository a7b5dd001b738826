// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"sync"
)

// Lazy returns a Client that calls open on the first Complete and reuses the
// result. An open error is returned by every call. Runs served entirely from
// a checkpoint or the response cache never call open, so they need no
// credentials.
func Lazy(open func(ctx context.Context) (Client, error)) Client {
	l := &lazyClient{open: open}
	return ClientFunc(l.complete)
}

type lazyClient struct {
	once   sync.Once
	open   func(ctx context.Context) (Client, error)
	client Client
	err    error
}

func (l *lazyClient) complete(ctx context.Context, req Request) (Response, error) {
	l.once.Do(func() { l.client, l.err = l.open(ctx) })
	if l.err != nil {
		return Response{}, l.err
	}
	return l.client.Complete(ctx, req)
}
