// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for procport.
// Only the config directory is used: per-project state (progress checkpoint,
// response cache) lives next to the SQL sources in the working directory.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "procport"

// ConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func ConfigHome() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// ConfigDir returns the XDG config directory for procport.
// The directory is created with private permissions (0700) if missing.
func ConfigDir() (string, error) {
	base, err := ConfigHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
