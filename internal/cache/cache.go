// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cache stores LLM responses keyed by a digest of the request, so that
// re-running a conversion after an interruption replays finished calls instead
// of paying for them again.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
)

// Store is a key/value store for raw model responses.
// Implementations treat an empty stored value as a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendDir:
		return NewDirStore(dir), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "cache.db"))
	default:
		return nil, fmt.Errorf("unknown cache backend %q (use %s or %s)", backend, BackendDir, BackendSQLite)
	}
}
