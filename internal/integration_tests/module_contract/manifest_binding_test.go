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

// TestModuleContract_ManifestBinding validates that nodes declared in HCL are
// evaluated by the Go handlers they name.
func TestModuleContract_ManifestBinding(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{
		"numbers/source.hcl": testutil.SourceManifest,
		"numbers/double.hcl": testutil.DoubleManifest,
	}
	mod := testutil.NewCountingModule()

	result := testutil.RunIntegrationTest(t, files, mod)
	require.NoError(t, result.Err, "startup failed unexpectedly")
	reg := result.App.Registry()

	g := graph.New()
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "source"), "seed", graph.WithConfig(cty.NumberIntVal(3))))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "twice"), "d"))
	require.NoError(t, g.Connect("seed", "out", "d", "in"))

	// --- Act ---
	res, err := result.App.Evaluate(context.Background(), g, nil, port.Ref{Instance: "d", Port: "out"})

	// --- Assert ---
	require.NoError(t, err)
	v, ok := res.Get("d", "out")
	require.True(t, ok)
	require.True(t, v.RawEquals(cty.NumberIntVal(6)), "got %#v", v)
	require.Equal(t, 1, mod.Calls("seed"))
	require.Equal(t, 1, mod.Calls("d"))
	require.Contains(t, result.LogOutput, "Registry loaded successfully.")
}
