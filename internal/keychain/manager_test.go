// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestManager_APIKeys(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	if _, err := m.LoadAPIKey("openai"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAPIKey() on empty ring: err = %v, want ErrNotFound", err)
	}
	if err := m.SaveAPIKey("OpenAI", "sk-test-123"); err != nil {
		t.Fatalf("SaveAPIKey() error = %v", err)
	}
	got, err := m.LoadAPIKey("openai")
	if err != nil {
		t.Fatalf("LoadAPIKey() error = %v", err)
	}
	if got != "sk-test-123" {
		t.Errorf("LoadAPIKey() = %q, want %q", got, "sk-test-123")
	}
}

func TestManager_EmptyValueIsNotFound(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring([]keyring.Item{{Key: KeyDBDSN, Data: []byte("  ")}}))
	if _, err := m.LoadDBDSN(); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadDBDSN() err = %v, want ErrNotFound", err)
	}
}

func TestManager_ClearAll(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	_ = m.SaveAPIKey("openai", "a")
	_ = m.SaveAPIKey("gemini", "b")
	_ = m.SaveDBDSN("postgresql://u:p@h:5432/d")

	if err := m.ClearAll("openai", "gemini", "ollama"); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	for _, p := range []string{"openai", "gemini"} {
		if _, err := m.LoadAPIKey(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s key still present: %v", p, err)
		}
	}
	if _, err := m.LoadDBDSN(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DSN still present: %v", err)
	}
}
