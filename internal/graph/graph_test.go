// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode("a.sql")
	g.AddNode("b.sql")
	g.AddNode("a.sql")
	assert.Equal(t, 2, g.Len())

	require.NoError(t, g.AddEdge("a.sql", "b.sql"))
	assert.Error(t, g.AddEdge("a.sql", "a.sql"))
	assert.Error(t, g.AddEdge("a.sql", "missing.sql"))
	assert.Error(t, g.AddEdge("missing.sql", "a.sql"))

	deps, err := g.Dependencies("b.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.sql"}, deps)

	dependents, err := g.Dependents("a.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.sql"}, dependents)

	_, err = g.Dependencies("missing.sql")
	assert.Error(t, err)
}

func TestOrder_DependenciesFirst(t *testing.T) {
	g := FromMap(map[string][]string{
		"app.sql":     {"billing.sql", "util.sql"},
		"billing.sql": {"util.sql"},
		"util.sql":    nil,
		"zeta.sql":    nil,
	})

	order, cycles := g.Order()
	assert.Empty(t, cycles)
	assert.Equal(t, []string{"util.sql", "billing.sql", "app.sql", "zeta.sql"}, order)
	assert.NoError(t, g.DetectCycles())
}

func TestOrder_IsDeterministic(t *testing.T) {
	m := map[string][]string{
		"c.sql": {"a.sql"},
		"b.sql": {"a.sql"},
		"a.sql": nil,
		"d.sql": {"c.sql", "b.sql"},
	}
	first, _ := FromMap(m).Order()
	for i := 0; i < 20; i++ {
		got, _ := FromMap(m).Order()
		require.Equal(t, first, got)
	}
	assert.Equal(t, []string{"a.sql", "b.sql", "c.sql", "d.sql"}, first)
}

func TestOrder_Cycle(t *testing.T) {
	g := FromMap(map[string][]string{
		"a.sql": {"b.sql"},
		"b.sql": {"a.sql"},
		"c.sql": {"a.sql"},
	})

	order, cycles := g.Order()
	assert.ElementsMatch(t, []string{"a.sql", "b.sql", "c.sql"}, order)
	assert.Len(t, order, 3)
	require.Equal(t, []Cycle{{From: "b.sql", To: "a.sql"}}, cycles)
	assert.Equal(t, "b.sql -> a.sql", FormatCycles(cycles))
	assert.Equal(t, []string{"b.sql", "a.sql", "c.sql"}, order)
	assert.Error(t, g.DetectCycles())
}

func TestFromMap_IncludesUnlistedDeps(t *testing.T) {
	g := FromMap(map[string][]string{"a.sql": {"lib/b.sql"}})
	assert.Equal(t, []string{"a.sql", "lib/b.sql"}, g.Nodes())
}

func TestTransitive(t *testing.T) {
	g := FromMap(map[string][]string{
		"a.sql": nil,
		"b.sql": {"a.sql"},
		"c.sql": {"b.sql"},
		"d.sql": nil,
	})
	assert.Equal(t, []string{"b.sql", "c.sql"}, g.Transitive("a.sql"))
	assert.Empty(t, g.Transitive("d.sql"))
	assert.Nil(t, g.Transitive("missing.sql"))
}
