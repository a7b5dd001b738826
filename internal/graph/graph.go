// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package graph models the file dependency graph and computes a conversion
// order that tolerates cycles.
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a directed graph of file keys. It is safe for concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// Cycle is a back edge found while ordering: From depends on To, but To is
// still being visited.
type Cycle struct {
	From string
	To   string
}

func (c Cycle) String() string {
	return c.From + " -> " + c.To
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// FromMap builds a graph from a file -> dependencies map. Dependencies that
// are not keys of m become nodes too.
func FromMap(m map[string][]string) *Graph {
	g := New()
	for file, deps := range m {
		g.AddNode(file)
		for _, d := range deps {
			g.AddNode(d)
		}
	}
	for file, deps := range m {
		for _, d := range deps {
			_ = g.AddEdge(d, file) // only self edges fail, and those are dropped
		}
	}
	return g
}

// AddNode adds a node. Adding an existing id is a no-op.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge records that toID depends on fromID.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns all node ids, sorted.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the sorted ids the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted ids that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// Transitive returns every node that depends on id directly or indirectly,
// sorted.
func (g *Graph) Transitive(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	seen := map[string]*node{}
	stack := []*node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for did, d := range cur.dependents {
			if _, ok := seen[did]; ok || did == id {
				continue
			}
			seen[did] = d
			stack = append(stack, d)
		}
	}
	return sortedKeys(seen)
}

// DetectCycles returns an error naming a node on the first cycle found.
func (g *Graph) DetectCycles() error {
	_, cycles := g.Order()
	if len(cycles) > 0 {
		return fmt.Errorf("cycle detected involving node '%s'", cycles[0].To)
	}
	return nil
}

// Order returns every node with dependencies before dependents. Nodes are
// visited in sorted order so the result is deterministic. Back edges are not
// followed; each one is reported as a Cycle.
func (g *Graph) Order() ([]string, []Cycle) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: fully visited. temporary: on the current DFS path.
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)
	order := make([]string, 0, len(g.nodes))
	var cycles []Cycle

	var visit func(n *node)
	visit = func(n *node) {
		temporary[n.id] = true
		for _, depID := range sortedKeys(n.deps) {
			if temporary[depID] {
				cycles = append(cycles, Cycle{From: n.id, To: depID})
				continue
			}
			if !permanent[depID] {
				visit(n.deps[depID])
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		order = append(order, n.id)
	}

	for _, id := range sortedKeys(g.nodes) {
		if !permanent[id] {
			visit(g.nodes[id])
		}
	}
	return order, cycles
}

// FormatCycles renders cycles one per line.
func FormatCycles(cycles []Cycle) string {
	lines := make([]string, len(cycles))
	for i, c := range cycles {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
