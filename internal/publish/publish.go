// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package publish copies a conversion checkpoint into PostgreSQL so results
// can be reviewed and queried outside the working directory. Every publish
// is one transaction under a fresh run id.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	perr "procport/cli/internal/errors"
	"procport/cli/internal/progress"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the publish tables if they are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS procport_runs (
	id          uuid PRIMARY KEY,
	work_dir    text        NOT NULL,
	model       text        NOT NULL DEFAULT '',
	file_count  integer     NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS procport_files (
	run_id      uuid    NOT NULL REFERENCES procport_runs(id) ON DELETE CASCADE,
	file        text    NOT NULL,
	deps        text[]  NOT NULL,
	processed   boolean NOT NULL,
	output_path text,
	java_code   text,
	PRIMARY KEY (run_id, file)
);
CREATE TABLE IF NOT EXISTS procport_symbols (
	run_id      uuid NOT NULL REFERENCES procport_runs(id) ON DELETE CASCADE,
	oracle      text NOT NULL,
	java        text NOT NULL
);`

// FileRow is one source file of a run.
type FileRow struct {
	File       string
	Deps       []string
	Processed  bool
	OutputPath string
	JavaCode   string
}

// SymbolRow is one symbol table entry.
type SymbolRow struct {
	Oracle string `json:"oracle"`
	Java   string `json:"java"`
}

// Run is everything written by one publish.
type Run struct {
	ID      uuid.UUID
	WorkDir string
	Model   string
	Files   []FileRow
	Symbols []SymbolRow
}

// ParseSymbol splits a "<oracle> -> <java>" entry.
func ParseSymbol(s string) SymbolRow {
	oracle, java, ok := strings.Cut(s, " -> ")
	if !ok {
		return SymbolRow{Oracle: strings.TrimSpace(s)}
	}
	return SymbolRow{Oracle: strings.TrimSpace(oracle), Java: strings.TrimSpace(java)}
}

// Build collects a run from a checkpoint. Generated code is read from the
// recorded output paths; files printed to stdout have no code.
func Build(workDir, model string, st *progress.State) (*Run, error) {
	if !st.HasGraph() {
		return nil, perr.New(perr.PublishFailed, "nothing to publish; run 'procport convert' first")
	}
	run := &Run{ID: uuid.New(), WorkDir: workDir, Model: model}

	files := make([]string, 0, len(st.Graph))
	for f := range st.Graph {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		deps := append([]string{}, st.Graph[f]...)
		sort.Strings(deps)
		row := FileRow{File: f, Deps: deps, Processed: st.IsProcessed(f), OutputPath: st.Outputs[f]}
		if row.OutputPath != "" {
			code, err := os.ReadFile(row.OutputPath)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, perr.Wrap(perr.PublishFailed, "read "+row.OutputPath, err)
			}
			row.JavaCode = string(code)
		}
		run.Files = append(run.Files, row)
	}
	for _, s := range st.Symbols() {
		run.Symbols = append(run.Symbols, ParseSymbol(s))
	}
	return run, nil
}

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, perr.Wrap(perr.PublishFailed, "invalid database configuration", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, perr.Wrap(perr.PublishFailed, "cannot reach database", err)
	}
	return pool, nil
}

// Publish writes run in a single transaction, creating tables if needed.
func Publish(ctx context.Context, db Beginner, run *Run) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return perr.Wrap(perr.PublishFailed, "begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, Schema); err != nil {
		return perr.Wrap(perr.PublishFailed, "create tables", err)
	}
	id := pgUUID(run.ID)
	if _, err := tx.Exec(ctx,
		`INSERT INTO procport_runs (id, work_dir, model, file_count) VALUES ($1, $2, $3, $4)`,
		id, run.WorkDir, run.Model, len(run.Files)); err != nil {
		return perr.Wrap(perr.PublishFailed, "insert run", err)
	}

	if n, err := tx.CopyFrom(ctx, pgx.Identifier{"procport_files"},
		[]string{"run_id", "file", "deps", "processed", "output_path", "java_code"},
		pgx.CopyFromRows(fileRows(id, run.Files))); err != nil {
		return perr.Wrap(perr.PublishFailed, "copy files", err)
	} else if int(n) != len(run.Files) {
		return perr.New(perr.PublishFailed, fmt.Sprintf("copied %d of %d files", n, len(run.Files)))
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"procport_symbols"},
		[]string{"run_id", "oracle", "java"},
		pgx.CopyFromRows(symbolRows(id, run.Symbols))); err != nil {
		return perr.Wrap(perr.PublishFailed, "copy symbols", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return perr.Wrap(perr.PublishFailed, "commit", err)
	}
	return nil
}

func fileRows(id pgtype.UUID, files []FileRow) [][]any {
	rows := make([][]any, len(files))
	for i, f := range files {
		rows[i] = []any{id, f.File, f.Deps, f.Processed, nullable(f.OutputPath), nullable(f.JavaCode)}
	}
	return rows
}

func symbolRows(id pgtype.UUID, syms []SymbolRow) [][]any {
	rows := make([][]any, len(syms))
	for i, s := range syms {
		rows[i] = []any{id, s.Oracle, s.Java}
	}
	return rows
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
