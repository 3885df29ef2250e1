// SPDX-License-Identifier: MPL-2.0

// Package dag orders dependency names so that every name comes after the
// names it depends on. It is used by the build manifest to record an
// instantiation order an external bundler can replay.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports a dependency cycle. Cycle starts and ends with the
	// same name.
	CycleError struct {
		Cycle []string
	}

	// Graph is a dependency graph keyed by name. An edge from A to B means
	// A depends on B.
	Graph struct {
		deps  map[string][]string
		nodes map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		deps:  make(map[string][]string),
		nodes: make(map[string]bool),
	}
}

// Add records name and its dependencies. Adding a name again appends to
// its dependency list; duplicate edges are ignored.
func (g *Graph) Add(name string, deps ...string) {
	g.nodes[name] = true
	for _, d := range deps {
		g.nodes[d] = true
		if !slices.Contains(g.deps[name], d) {
			g.deps[name] = append(g.deps[name], d)
		}
	}
}

// Len returns the number of names.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Order returns every name after its dependencies. Among names that are
// ready at the same time the lexically smallest comes first, so the order
// is deterministic.
func (g *Graph) Order() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string)
	for name := range g.nodes {
		pending[name] = len(g.deps[name])
		for _, d := range g.deps[name] {
			dependents[d] = append(dependents[d], name)
		}
	}

	var ready []string
	for name, n := range pending {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		slices.Sort(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, dependent := range dependents[name] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle()}
	}
	return order, nil
}

// findCycle returns one cycle, found by depth-first search from the
// smallest name that is part of one.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		active
		finished
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(string) []string
	visit = func(name string) []string {
		state[name] = active
		stack = append(stack, name)
		deps := slices.Clone(g.deps[name])
		slices.Sort(deps)
		for _, d := range deps {
			switch state[d] {
			case active:
				i := slices.Index(stack, d)
				return append(slices.Clone(stack[i:]), d)
			case unvisited:
				if c := visit(d); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = finished
		return nil
	}

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if state[name] == unvisited {
			if c := visit(name); c != nil {
				return c
			}
		}
	}
	return nil
}
