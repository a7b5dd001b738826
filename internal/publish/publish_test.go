// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	perr "procport/cli/internal/errors"
	"procport/cli/internal/progress"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	assert.Equal(t, SymbolRow{Oracle: "PKG.F(N NUMBER) RETURNS NUMBER", Java: "Pkg.f(int n) RETURNS int"},
		ParseSymbol("PKG.F(N NUMBER) RETURNS NUMBER -> Pkg.f(int n) RETURNS int"))
	assert.Equal(t, SymbolRow{Oracle: "lonely"}, ParseSymbol("lonely"))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "a.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("class A {}\n"), 0o644))

	st := progress.New()
	st.Graph = map[string][]string{"a.sql": {}, "b.sql": {"a.sql"}, "c.sql": nil}
	st.MarkProcessed("a.sql")
	st.MarkProcessed("c.sql")
	st.Outputs["a.sql"] = out
	st.Outputs["c.sql"] = filepath.Join(dir, "out", "gone.java")
	st.AddSymbols(progress.Symbol{Oracle: "A.F()", Java: "A.f()"})

	run, err := Build(dir, "gpt-4o", st)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "gpt-4o", run.Model)
	require.Len(t, run.Files, 3)
	assert.Equal(t, FileRow{File: "a.sql", Deps: []string{}, Processed: true, OutputPath: out, JavaCode: "class A {}\n"}, run.Files[0])
	assert.Equal(t, FileRow{File: "b.sql", Deps: []string{"a.sql"}}, run.Files[1])
	assert.Empty(t, run.Files[2].JavaCode, "missing outputs are tolerated")
	assert.Equal(t, []SymbolRow{{Oracle: "A.F()", Java: "A.f()"}}, run.Symbols)

	rows := fileRows(pgUUID(run.ID), run.Files)
	assert.Nil(t, rows[1][4], "empty output path is NULL")
	assert.Equal(t, "class A {}\n", rows[0][5])
}

func TestBuild_EmptyCheckpoint(t *testing.T) {
	_, err := Build(t.TempDir(), "", progress.New())
	assert.True(t, perr.Is(err, perr.PublishFailed))
}

func TestPublish_Postgres(t *testing.T) {
	dsn := os.Getenv("PROCPORT_TEST_DSN")
	if dsn == "" {
		t.Skip("PROCPORT_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	st := progress.New()
	st.Graph = map[string][]string{"a.sql": {}}
	st.AddSymbols(progress.Symbol{Oracle: "A.F()", Java: "A.f()"})
	run, err := Build(t.TempDir(), "gpt-4o", st)
	require.NoError(t, err)
	require.NoError(t, Publish(ctx, pool, run))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM procport_symbols WHERE run_id = $1`, pgUUID(run.ID)).Scan(&n))
	assert.Equal(t, 1, n)
}
