// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xdg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigHome_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	got, err := ConfigHome()
	if err != nil {
		t.Fatalf("ConfigHome() error = %v", err)
	}
	if !strings.HasSuffix(got, ".config") {
		t.Errorf("ConfigHome() = %q, want suffix %q", got, ".config")
	}
}

func TestConfigDir_CreatesPrivateDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "procport"); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("perm = %o, want 700", perm)
	}
}
