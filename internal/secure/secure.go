// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package secure resolves secrets for the CLI. Environment variables (including
// values loaded from .env files) take precedence over the OS keychain, so CI jobs
// can run without a credential store while workstations keep keys out of shell
// history.
package secure

import (
	"os"
	"strings"
	"sync"

	perr "procport/cli/internal/errors"
	"procport/cli/internal/keychain"
)

// Source describes where a secret was found.
type Source string

const (
	SourceEnv      Source = "env"
	SourceKeychain Source = "keychain"
)

// KeyStore is the subset of keychain.Manager used for lookups.
type KeyStore interface {
	LoadAPIKey(provider string) (string, error)
	LoadDBDSN() (string, error)
}

// APIKeyEnv lists the environment variables checked for a provider, in order.
func APIKeyEnv(provider string) []string {
	switch strings.ToLower(provider) {
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "gemini":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	default:
		return nil
	}
}

// RequiresAPIKey reports whether the provider needs a credential at all.
func RequiresAPIKey(provider string) bool {
	return len(APIKeyEnv(provider)) > 0
}

// ResolveAPIKey returns the API key for provider from env, then from ks.
// ks may be nil when no keychain is available on this system.
func ResolveAPIKey(provider string, ks KeyStore) (string, Source, error) {
	for _, name := range APIKeyEnv(provider) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, SourceEnv, nil
		}
	}
	if ks != nil {
		if v, err := ks.LoadAPIKey(provider); err == nil && v != "" {
			return v, SourceKeychain, nil
		}
	}
	hint := "run 'procport login'"
	if names := APIKeyEnv(provider); len(names) > 0 {
		hint = "set " + names[0] + " or " + hint
	}
	return "", "", perr.New(perr.MissingCredential, "no API key for "+provider+"; "+hint)
}

// ResolveDSN returns the publish DSN from PROCPORT_DSN, DATABASE_URL, then ks.
func ResolveDSN(ks KeyStore) (string, Source, error) {
	for _, name := range []string{"PROCPORT_DSN", "DATABASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, SourceEnv, nil
		}
	}
	if ks != nil {
		if v, err := ks.LoadDBDSN(); err == nil && v != "" {
			return v, SourceKeychain, nil
		}
	}
	return "", "", perr.New(perr.MissingCredential, "no database configured; set PROCPORT_DSN or run 'procport connect'")
}

// DefaultKeyStore returns the global keychain manager. The OS credential
// store is only opened on first lookup, so environment-only setups never
// touch it.
func DefaultKeyStore() KeyStore {
	return Lazy(func() KeyStore {
		m, err := keychain.GetManager()
		if err != nil {
			return nil
		}
		return m
	})
}

// Lazy defers opening a KeyStore until the first lookup. open may return nil
// when no store is available; lookups then report keychain.ErrNotFound.
func Lazy(open func() KeyStore) KeyStore {
	return &lazyStore{open: open}
}

type lazyStore struct {
	once sync.Once
	open func() KeyStore
	ks   KeyStore
}

func (l *lazyStore) get() KeyStore {
	l.once.Do(func() { l.ks = l.open() })
	return l.ks
}

func (l *lazyStore) LoadAPIKey(provider string) (string, error) {
	if ks := l.get(); ks != nil {
		return ks.LoadAPIKey(provider)
	}
	return "", keychain.ErrNotFound
}

func (l *lazyStore) LoadDBDSN() (string, error) {
	if ks := l.get(); ks != nil {
		return ks.LoadDBDSN()
	}
	return "", keychain.ErrNotFound
}
