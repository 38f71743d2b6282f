package integration_tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// TestErrorHandling_NodeFailureAbortsPass validates that a failing node stops
// the pass, that nothing downstream runs, and that results computed so far
// are reported as discarded.
func TestErrorHandling_NodeFailureAbortsPass(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{
		"source.hcl": testutil.SourceManifest,
		"fail.hcl":   testutil.FailManifest,
		"double.hcl": testutil.DoubleManifest,
	}
	mod := testutil.NewCountingModule()
	result := testutil.RunIntegrationTest(t, files, mod)
	require.NoError(t, result.Err)
	reg := result.App.Registry()

	g := graph.New()
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "source"), "seed", graph.WithConfig(cty.NumberIntVal(1))))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "fail"), "f"))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "twice"), "d"))
	require.NoError(t, g.Connect("seed", "out", "f", "in"))
	require.NoError(t, g.Connect("f", "out", "d", "in"))

	// --- Act ---
	res, err := result.App.Evaluate(context.Background(), g, nil, port.Ref{Instance: "d", Port: "out"})

	// --- Assert ---
	require.Nil(t, res)
	var evalErr *graph.EvaluationError
	require.True(t, errors.As(err, &evalErr), "got %v", err)
	require.Equal(t, "f", evalErr.Instance)
	require.Equal(t, "fail", evalErr.Definition)
	require.ErrorIs(t, err, testutil.ErrBoom)
	require.Equal(t, []port.Ref{{Instance: "seed", Port: "out"}}, evalErr.Discarded)
	require.Equal(t, 0, mod.Calls("d"), "nothing downstream of a failure may run")
}
