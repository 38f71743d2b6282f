package dag

import (
	"fmt"
	"strings"
)

// Graph is a set of named vertices and the dependencies between them.
// It is not safe for concurrent mutation; callers own a Graph while building
// it and may read it concurrently once building is done.
type Graph struct {
	// names holds the vertex ids, indexed by vertex.
	names []string
	// index maps a vertex id back to its position.
	index map[string]int
	// deps holds, per vertex, the vertices it depends on in edge order.
	deps [][]int
	// dependents holds, per vertex, the vertices depending on it in edge order.
	dependents [][]int
}

// color marks the DFS state of a vertex.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // finished
)

// CycleError reports the vertices that form a cycle, in path order starting
// from the first vertex of the cycle the search reached.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	path := append(append([]string{}, e.Nodes...), e.Nodes[0])
	return fmt.Sprintf("cycle detected: %s", strings.Join(path, " -> "))
}
