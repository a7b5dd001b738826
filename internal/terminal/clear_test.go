// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"sk-abc\n", "sk-abc", false},
		{"  sk-abc  \r\n", "sk-abc", false},
		{"no-newline", "no-newline", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ReadLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Fatalf("ReadLine(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ReadLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadSecret_NonInteractive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "in")
	if err := os.WriteFile(p, []byte("sk-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := ReadSecret("API key: ", f, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sk-secret" {
		t.Errorf("got %q", got)
	}
}
