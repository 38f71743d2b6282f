package graphstore

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
)

func TestPutAndGet(t *testing.T) {
	s := New()

	// Get a graph that doesn't exist yet
	_, ok := s.Get("a")
	assert.False(t, ok)

	g := graph.New()
	s.Put("a", g)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, g, got)
	assert.Equal(t, []string{"a"}, s.Names())

	s.Delete("a")
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Empty(t, s.Names())
}

func TestGetOrBuild(t *testing.T) {
	s := New()

	t.Run("errors are not stored", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.GetOrBuild("bad", func() (*graph.Graph, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		_, ok := s.Get("bad")
		assert.False(t, ok)
	})

	t.Run("builds once per name", func(t *testing.T) {
		var builds atomic.Int32
		build := func() (*graph.Graph, error) {
			builds.Add(1)
			return graph.New(), nil
		}

		first, err := s.GetOrBuild("g", build)
		require.NoError(t, err)
		second, err := s.GetOrBuild("g", build)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), builds.Load())
	})

	t.Run("concurrent callers agree", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make([]*graph.Graph, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				g, err := s.GetOrBuild("shared", func() (*graph.Graph, error) { return graph.New(), nil })
				assert.NoError(t, err)
				results[i] = g
			}(i)
		}
		wg.Wait()

		for _, g := range results {
			assert.Same(t, results[0], g)
		}
	})
}
