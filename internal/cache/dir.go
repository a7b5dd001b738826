// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// DirStore keeps one file per key: <dir>/<key>.cache.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. The directory is created lazily on
// the first Put.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (s *DirStore) path(key string) string {
	return filepath.Join(s.dir, key+".cache")
}

// Get returns the cached value for key.
func (s *DirStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Put writes value for key via a temp file and rename, so a crash never leaves a
// truncated entry behind.
func (s *DirStore) Put(_ context.Context, key, value string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *DirStore) Close() error { return nil }
