package graphstore

import (
	"sort"
	"sync"

	"github.com/vk/fxgraph/internal/graph"
)

// Store maps names to built graphs.
type Store struct {
	graphs sync.Map // name -> *graph.Graph
}

// New creates a new, empty store.
func New() *Store {
	return &Store{}
}

// Get returns the graph stored under name.
func (s *Store) Get(name string) (*graph.Graph, bool) {
	v, ok := s.graphs.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*graph.Graph), true
}

// Put stores g under name, replacing any previous graph.
func (s *Store) Put(name string, g *graph.Graph) {
	s.graphs.Store(name, g)
}

// GetOrBuild returns the graph stored under name, building and storing it
// first if needed. Build errors are returned and nothing is stored. When two
// callers build concurrently, both receive the graph stored first.
func (s *Store) GetOrBuild(name string, build func() (*graph.Graph, error)) (*graph.Graph, error) {
	if g, ok := s.Get(name); ok {
		return g, nil
	}
	g, err := build()
	if err != nil {
		return nil, err
	}
	actual, _ := s.graphs.LoadOrStore(name, g)
	return actual.(*graph.Graph), nil
}

// Delete removes the graph stored under name.
func (s *Store) Delete(name string) {
	s.graphs.Delete(name)
}

// Names returns the stored names, sorted.
func (s *Store) Names() []string {
	var names []string
	s.graphs.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
