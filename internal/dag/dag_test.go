// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestOrder_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestOrder_DependenciesFirst(t *testing.T) {
	t.Parallel()
	g := New()
	g.Add("HANDLERS", "getPing", "getUser")
	g.Add("getPing", "db")
	g.Add("getUser", "db", "logger")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"db", "getPing", "logger", "getUser", "HANDLERS"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestOrder_Deterministic(t *testing.T) {
	t.Parallel()
	build := func() []string {
		g := New()
		for _, n := range []string{"e", "d", "c", "b", "a"} {
			g.Add(n)
		}
		g.Add("root", "e", "a")
		order, err := g.Order()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return order
	}

	first := build()
	for range 10 {
		if got := build(); !slices.Equal(got, first) {
			t.Fatalf("order changed: %v vs %v", got, first)
		}
	}
	if !slices.Equal(first, []string{"a", "b", "c", "d", "e", "root"}) {
		t.Errorf("got %v", first)
	}
}

func TestOrder_DuplicateEdges(t *testing.T) {
	t.Parallel()
	g := New()
	g.Add("A", "B")
	g.Add("A", "B")
	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"B", "A"}) {
		t.Errorf("expected [B A], got %v", order)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestOrder_Cycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edges map[string][]string
		want  []string
	}{
		{
			name:  "self loop",
			edges: map[string][]string{"a": {"a"}},
			want:  []string{"a", "a"},
		},
		{
			name:  "three nodes",
			edges: map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}, "root": {"a"}},
			want:  []string{"a", "b", "c", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for name, deps := range tt.edges {
				g.Add(name, deps...)
			}
			_, err := g.Order()
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected CycleError, got %v", err)
			}
			if !slices.Equal(cycleErr.Cycle, tt.want) {
				t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, tt.want)
			}
		})
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"a", "b", "a"}}
	if got, want := err.Error(), "dependency cycle: a -> b -> a"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
