// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for procport.
// It stores provider API keys and the publish database DSN in the OS credential
// store (macOS Keychain, Windows Credential Manager, Secret Service or pass on Linux)
// so that secrets never land in the JSON config file.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "procport"

// KeyDBDSN is the keychain item holding the publish database DSN.
const KeyDBDSN = "db_dsn"

// ErrNotFound is returned when a secret is missing or empty.
var ErrNotFound = errors.New("secret not found in keychain")

// APIKeyName returns the keychain item name for a provider's API key.
func APIKeyName(provider string) string {
	return strings.ToLower(provider) + "_api_key"
}

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an existing keyring, e.g. keyring.NewArrayKeyring in tests.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// There is deliberately no encrypted-file fallback: it would prompt for a
// passphrase in the middle of a batch conversion.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

// Set stores a secret. This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Get retrieves a secret, returning ErrNotFound when missing or empty.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	v := strings.TrimSpace(string(it.Data))
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Delete removes a secret; missing keys are not an error.
// This method is thread-safe.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// SaveAPIKey stores a provider API key.
func (m *Manager) SaveAPIKey(provider, key string) error {
	return m.Set(APIKeyName(provider), key)
}

// LoadAPIKey retrieves a provider API key.
func (m *Manager) LoadAPIKey(provider string) (string, error) {
	return m.Get(APIKeyName(provider))
}

// SaveDBDSN stores the database DSN in the keychain.
func (m *Manager) SaveDBDSN(dsn string) error {
	return m.Set(KeyDBDSN, dsn)
}

// LoadDBDSN retrieves the database DSN from the keychain.
func (m *Manager) LoadDBDSN() (string, error) {
	return m.Get(KeyDBDSN)
}

// ClearAll removes every procport secret for the given providers plus the DSN.
func (m *Manager) ClearAll(providers ...string) error {
	var errs []error
	for _, p := range providers {
		if err := m.Delete(APIKeyName(p)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.Delete(KeyDBDSN); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
