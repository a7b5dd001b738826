// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the procport CLI application.
// It ports Oracle PL/SQL packages to Java with an LLM.
package main

import (
	"procport/cli/cmd"
)

// main is the entry point for the procport CLI application.
func main() {
	cmd.Execute()
}
