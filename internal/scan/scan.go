// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package scan finds the stored procedure sources under a working directory.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perr "procport/cli/internal/errors"
)

// Ext is the source file extension.
const Ext = ".sql"

// Scan walks dir and returns every regular .sql file as a slash-separated path
// relative to dir, sorted. Hidden directories are skipped.
func Scan(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, perr.Wrap(perr.ScanFailed, "cannot read working directory", err)
	}
	if !info.IsDir() {
		return nil, perr.New(perr.ScanFailed, fmt.Sprintf("%s is not a directory", dir))
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(d.Name()), Ext) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, perr.Wrap(perr.ScanFailed, "walk "+dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// OSPath converts a file key back into a path under dir.
func OSPath(dir, file string) string {
	return filepath.Join(dir, filepath.FromSlash(file))
}
