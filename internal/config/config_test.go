// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"LOG_LEVEL", "PROCPORT_PROVIDER", "PROCPORT_MODEL", "PROCPORT_MAX_TOKENS", "OPENAI_BASE_URL", "OLLAMA_HOST"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "gpt-4o", c.Model)
	assert.Equal(t, 16384, c.MaxTokens)
	assert.True(t, c.Cache.Enabled)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "procport", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, []byte(`{"model":"gpt-4.1","cache":{"backend":"sqlite"}}`), 0o600))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", c.Model)
	assert.Equal(t, "sqlite", c.Cache.Backend)
	assert.Equal(t, DefaultCacheDir, c.Cache.Dir)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, DefaultProvider, c.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PROCPORT_PROVIDER", "Ollama")
	t.Setenv("PROCPORT_MAX_TOKENS", "2048")
	t.Setenv("OLLAMA_HOST", "127.0.0.1:11500")
	t.Setenv("OPENAI_BASE_URL", "http://proxy.local/v1")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, 2048, c.MaxTokens)
	assert.Equal(t, "http://127.0.0.1:11500", c.Ollama.BaseURL)
	assert.Equal(t, "http://proxy.local/v1", c.OpenAI.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	c := Default()
	c.Concurrency = 9

	require.NoError(t, Save(c))
	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, got.Concurrency)

	p, err := Path()
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROCPORT_TEST_A=from-file\nPROCPORT_TEST_B=from-file\n"), 0o600))
	t.Setenv("PROCPORT_TEST_A", "from-env")
	t.Setenv("PROCPORT_TEST_B", "")
	os.Unsetenv("PROCPORT_TEST_B")

	require.NoError(t, LoadDotEnv(dir, filepath.Join(dir, "missing")))
	assert.Equal(t, "from-env", os.Getenv("PROCPORT_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("PROCPORT_TEST_B"))
	os.Unsetenv("PROCPORT_TEST_B")
}
