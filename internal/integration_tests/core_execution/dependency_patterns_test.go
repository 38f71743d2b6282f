package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func diamond(t *testing.T) (*testutil.HarnessResult, *testutil.CountingModule, *graph.Graph) {
	t.Helper()
	files := map[string]string{
		"source.hcl": testutil.SourceManifest,
		"double.hcl": testutil.DoubleManifest,
		"sum.hcl":    testutil.SumManifest,
		"label.hcl":  testutil.LabelManifest,
	}
	mod := testutil.NewCountingModule()
	result := testutil.RunIntegrationTest(t, files, mod)
	require.NoError(t, result.Err)
	reg := result.App.Registry()

	g := graph.New()
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "source"), "seed", graph.WithConfig(cty.NumberIntVal(3))))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "twice"), "left"))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "twice"), "right"))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "sum"), "join"))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "label"), "unused"))
	require.NoError(t, g.Connect("seed", "out", "left", "in"))
	require.NoError(t, g.Connect("seed", "out", "right", "in"))
	require.NoError(t, g.Connect("left", "out", "join", "a"))
	require.NoError(t, g.Connect("right", "out", "join", "b"))
	require.NoError(t, g.Connect("seed", "out", "unused", "in"))
	return result, mod, g
}

// TestCoreExecution_DiamondEvaluatesSharedUpstreamOnce validates fan-out
// memoization: a node feeding two branches runs once per pass.
func TestCoreExecution_DiamondEvaluatesSharedUpstreamOnce(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	result, mod, g := diamond(t)

	// --- Act ---
	res, err := result.App.Evaluate(context.Background(), g, nil, port.Ref{Instance: "join", Port: "out"})

	// --- Assert ---
	require.NoError(t, err)
	v, _ := res.Get("join", "out")
	require.True(t, v.RawEquals(cty.NumberIntVal(12)), "got %#v", v)
	require.Equal(t, 1, mod.Calls("seed"))
	require.Equal(t, 0, mod.Calls("unused"), "instances outside the requested closure must not run")
}

// TestCoreExecution_PassesAreIndependent validates that nothing is cached
// between passes.
func TestCoreExecution_PassesAreIndependent(t *testing.T) {
	t.Parallel()
	result, mod, g := diamond(t)
	want := port.Ref{Instance: "join", Port: "out"}

	for i := 0; i < 3; i++ {
		_, err := result.App.Evaluate(context.Background(), g, nil, want)
		require.NoError(t, err)
	}

	require.Equal(t, 3, mod.Calls("seed"))
	require.Equal(t, 3, mod.Calls("join"))
}
