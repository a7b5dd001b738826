// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress persists the resume checkpoint of a conversion run.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	perr "procport/cli/internal/errors"
)

// FileName is the checkpoint file kept in the working directory.
const FileName = ".progress.json"

// Symbol is one converted function signature pair.
type Symbol struct {
	Oracle string `json:"oracle"`
	Java   string `json:"java"`
}

// String renders the symbol table entry, "<oracle> -> <java>".
func (s Symbol) String() string {
	return s.Oracle + " -> " + s.Java
}

// State is the checkpoint of a run.
type State struct {
	processed map[string]struct{}
	symbols   map[string]struct{}
	// Graph maps a file to the files it depends on.
	Graph map[string][]string
	// Outputs maps a file to the path its generated code was written to.
	Outputs map[string]string
}

type fileFormat struct {
	ProcessedFiles []string            `json:"processed_files"`
	Symbols        []string            `json:"symbols"`
	FileDepGraph   map[string][]string `json:"file_dep_graph"`
	Outputs        map[string]string   `json:"outputs,omitempty"`
}

// New returns an empty state.
func New() *State {
	return &State{
		processed: map[string]struct{}{},
		symbols:   map[string]struct{}{},
		Graph:     map[string][]string{},
		Outputs:   map[string]string{},
	}
}

// Path returns the checkpoint path for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, FileName)
}

// Load reads the checkpoint at path. A missing file yields an empty state.
func Load(path string) (*State, error) {
	s := New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, perr.Wrap(perr.ProgressCorrupt, "cannot read "+path, err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, perr.Wrap(perr.ProgressCorrupt, path+" is not a valid checkpoint; run 'procport reset' to start over", err)
	}
	for _, p := range f.ProcessedFiles {
		s.processed[p] = struct{}{}
	}
	for _, sym := range f.Symbols {
		s.symbols[sym] = struct{}{}
	}
	for file, deps := range f.FileDepGraph {
		s.Graph[file] = append([]string(nil), deps...)
	}
	for file, out := range f.Outputs {
		s.Outputs[file] = out
	}
	return s, nil
}

// Save writes the checkpoint atomically. Sets are written sorted.
func (s *State) Save(path string) error {
	graph := make(map[string][]string, len(s.Graph))
	for file, deps := range s.Graph {
		d := append([]string{}, deps...)
		sort.Strings(d)
		graph[file] = d
	}
	data, err := json.MarshalIndent(fileFormat{
		ProcessedFiles: s.Processed(),
		Symbols:        s.Symbols(),
		FileDepGraph:   graph,
		Outputs:        s.Outputs,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

// Remove deletes the checkpoint. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *State) IsProcessed(file string) bool {
	_, ok := s.processed[file]
	return ok
}

func (s *State) MarkProcessed(file string) {
	s.processed[file] = struct{}{}
}

// Processed returns the processed files, sorted.
func (s *State) Processed() []string { return sorted(s.processed) }

// AddSymbols adds entries to the symbol table and returns how many were new.
func (s *State) AddSymbols(syms ...Symbol) int {
	added := 0
	for _, sym := range syms {
		if sym.Oracle == "" && sym.Java == "" {
			continue
		}
		key := sym.String()
		if _, ok := s.symbols[key]; !ok {
			s.symbols[key] = struct{}{}
			added++
		}
	}
	return added
}

// Symbols returns the symbol table, sorted.
func (s *State) Symbols() []string { return sorted(s.symbols) }

// HasGraph reports whether a dependency graph has been stored.
func (s *State) HasGraph() bool { return len(s.Graph) > 0 }

// Remaining returns graph files that are not processed yet, sorted.
func (s *State) Remaining() []string {
	var out []string
	for file := range s.Graph {
		if !s.IsProcessed(file) {
			out = append(out, file)
		}
	}
	sort.Strings(out)
	return out
}

func sorted(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
