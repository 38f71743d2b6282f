package dag

import (
	"fmt"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode adds a vertex with the given id and returns its index. Adding an
// id that already exists returns the existing index.
func (g *Graph) AddNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.names)
	g.names = append(g.names, id)
	g.index[id] = i
	g.deps = append(g.deps, nil)
	g.dependents = append(g.dependents, nil)
	return i
}

// AddEdge records that `to` depends on `from`. Self edges are allowed and
// show up as a one-vertex cycle.
func (g *Graph) AddEdge(from, to int) error {
	if from < 0 || from >= len(g.names) {
		return fmt.Errorf("source node not found: %d", from)
	}
	if to < 0 || to >= len(g.names) {
		return fmt.Errorf("destination node not found: %d", to)
	}
	g.deps[to] = append(g.deps[to], from)
	g.dependents[from] = append(g.dependents[from], to)
	return nil
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.names) }

// Name returns the id of vertex i.
func (g *Graph) Name(i int) string { return g.names[i] }

// Index returns the vertex index for id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Dependencies returns the distinct vertices that i depends on, in the
// order their edges were added.
func (g *Graph) Dependencies(i int) []int {
	return distinct(g.deps[i])
}

// Dependents returns the distinct vertices that depend on i, in the order
// their edges were added.
func (g *Graph) Dependents(i int) []int {
	return distinct(g.dependents[i])
}

func distinct(in []int) []int {
	out := make([]int, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DetectCycles checks the whole graph for cycles, starting from vertices in
// declaration order and following edges downstream. It returns a *CycleError
// naming the members of the first cycle found.
func (g *Graph) DetectCycles() error {
	colors := make([]color, len(g.names))
	var stack []int

	var visit func(n int) error
	visit = func(n int) error {
		switch colors[n] {
		case black:
			return nil
		case gray:
			return g.cycleFrom(stack, n)
		}

		colors[n] = gray
		stack = append(stack, n)
		for _, next := range g.dependents[n] {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		colors[n] = black
		return nil
	}

	for n := range g.names {
		if colors[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Closure returns every vertex the roots transitively depend on, roots
// included, in an order where each vertex comes after all of its
// dependencies. Ties follow edge order, then root order. Vertices outside the
// closure are never visited.
func (g *Graph) Closure(roots []int) ([]int, error) {
	colors := make([]color, len(g.names))
	order := make([]int, 0, len(g.names))
	var stack []int

	var visit func(n int) error
	visit = func(n int) error {
		switch colors[n] {
		case black:
			return nil
		case gray:
			return g.cycleFrom(stack, n)
		}

		colors[n] = gray
		stack = append(stack, n)
		for _, dep := range g.deps[n] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		colors[n] = black
		order = append(order, n)
		return nil
	}

	for _, r := range roots {
		if r < 0 || r >= len(g.names) {
			return nil, fmt.Errorf("node not found: %d", r)
		}
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cycleFrom cuts the cycle that closes at vertex n out of the DFS stack.
func (g *Graph) cycleFrom(stack []int, n int) *CycleError {
	start := len(stack) - 1
	for start > 0 && stack[start] != n {
		start--
	}
	members := make([]string, 0, len(stack)-start)
	for _, v := range stack[start:] {
		members = append(members, g.names[v])
	}
	return &CycleError{Nodes: members}
}
