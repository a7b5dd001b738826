// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package secure

import (
	"testing"

	perr "procport/cli/internal/errors"
	"procport/cli/internal/keychain"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIKey(t *testing.T) {
	ks := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	require.NoError(t, ks.SaveAPIKey("openai", "sk-from-keychain"))

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-from-env")
		key, src, err := ResolveAPIKey("openai", ks)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", key)
		assert.Equal(t, SourceEnv, src)
	})

	t.Run("keychain fallback", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		key, src, err := ResolveAPIKey("openai", ks)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-keychain", key)
		assert.Equal(t, SourceKeychain, src)
	})

	t.Run("gemini accepts GOOGLE_API_KEY", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "AIza-google")
		key, _, err := ResolveAPIKey("gemini", nil)
		require.NoError(t, err)
		assert.Equal(t, "AIza-google", key)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		_, _, err := ResolveAPIKey("gemini", ks)
		require.Error(t, err)
		assert.True(t, perr.Is(err, perr.MissingCredential))
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})
}

func TestRequiresAPIKey(t *testing.T) {
	assert.True(t, RequiresAPIKey("openai"))
	assert.True(t, RequiresAPIKey("Gemini"))
	assert.False(t, RequiresAPIKey("ollama"))
}

func TestResolveDSN(t *testing.T) {
	t.Setenv("PROCPORT_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	dsn, src, err := ResolveDSN(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/app", dsn)
	assert.Equal(t, SourceEnv, src)

	t.Setenv("DATABASE_URL", "")
	_, _, err = ResolveDSN(keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil)))
	assert.True(t, perr.Is(err, perr.MissingCredential))
}

func TestLazy(t *testing.T) {
	opened := 0
	ks := Lazy(func() KeyStore {
		opened++
		return nil
	})

	t.Setenv("OPENAI_API_KEY", "sk-env")
	_, _, err := ResolveAPIKey("openai", ks)
	require.NoError(t, err)
	assert.Zero(t, opened, "env hit must not open the keychain")

	t.Setenv("OPENAI_API_KEY", "")
	_, _, err = ResolveAPIKey("openai", ks)
	assert.True(t, perr.Is(err, perr.MissingCredential))
	_, err = ks.LoadDBDSN()
	assert.ErrorIs(t, err, keychain.ErrNotFound)
	assert.Equal(t, 1, opened)
}
