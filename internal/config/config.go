// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain or env.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"procport/cli/internal/xdg"

	"github.com/joho/godotenv"
)

const (
	DefaultProvider     = "openai"
	DefaultModel        = "gpt-4o"
	DefaultMaxTokens    = 16 * 1024
	DefaultConcurrency  = 4
	DefaultCacheDir     = ".cached"
	DefaultCacheBackend = "dir"
	DefaultOpenAIURL    = "https://api.openai.com/v1"
	DefaultOllamaURL    = "http://localhost:11434"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel    string       `json:"log_level"`
	Provider    string       `json:"provider"`
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Concurrency int          `json:"concurrency"`
	Cache       CacheConfig  `json:"cache"`
	OpenAI      OpenAIConfig `json:"openai"`
	Ollama      OllamaConfig `json:"ollama"`
}

// CacheConfig controls the LLM response cache.
type CacheConfig struct {
	Enabled bool `json:"enabled"`
	// Dir is resolved against the working directory when relative.
	Dir     string `json:"dir"`
	Backend string `json:"backend"` // dir|sqlite
}

// OpenAIConfig holds OpenAI-compatible endpoint settings.
type OpenAIConfig struct {
	BaseURL string `json:"base_url"`
}

// OllamaConfig holds the local ollama endpoint.
type OllamaConfig struct {
	BaseURL string `json:"base_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:    "info",
		Provider:    DefaultProvider,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Concurrency: DefaultConcurrency,
		Cache: CacheConfig{
			Enabled: true,
			Dir:     DefaultCacheDir,
			Backend: DefaultCacheBackend,
		},
		OpenAI: OpenAIConfig{BaseURL: DefaultOpenAIURL},
		Ollama: OllamaConfig{BaseURL: DefaultOllamaURL},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
// Environment overrides are applied on top of the file.
func Load() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.applyEnv()
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	c.fillDefaults()
	c.applyEnv()
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// LoadDotEnv loads .env files from the given directories. Variables already
// present in the environment win; missing files are ignored.
func LoadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// fillDefaults restores zero values a partial config file left behind.
func (c *Config) fillDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = d.Cache.Dir
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = d.OpenAI.BaseURL
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = d.Ollama.BaseURL
	}
}

func (c *Config) applyEnv() {
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := env("PROCPORT_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := env("PROCPORT_MODEL"); v != "" {
		c.Model = v
	}
	if v := env("PROCPORT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxTokens = n
		}
	}
	if v := env("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := env("OLLAMA_HOST"); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.Ollama.BaseURL = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
