package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// TestTypeSystem_ConnectMismatch validates that wiring a string output into a
// number input is refused at connect time and leaves the graph unchanged.
func TestTypeSystem_ConnectMismatch(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{
		"label.hcl":  testutil.LabelManifest,
		"double.hcl": testutil.DoubleManifest,
	}
	result := testutil.RunIntegrationTest(t, files, testutil.NewCountingModule())
	require.NoError(t, result.Err)
	reg := result.App.Registry()

	g := graph.New()
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "label"), "l"))
	require.NoError(t, g.AddInstance(testutil.Definition(t, reg, "twice"), "d"))
	before := g.Version()

	// --- Act ---
	err := g.Connect("l", "out", "d", "in")

	// --- Assert ---
	var mismatch *graph.TypeMismatchError
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	require.True(t, mismatch.Have.Equals(cty.String))
	require.True(t, mismatch.Want.Equals(cty.Number))
	require.Equal(t, before, g.Version())
	_, bound := g.Binding(port.Ref{Instance: "d", Port: "in"})
	require.False(t, bound)
}

// TestTypeSystem_DynamicTypesAreRejected validates that a manifest may not
// leave a type open with "any".
func TestTypeSystem_DynamicTypesAreRejected(t *testing.T) {
	t.Parallel()
	manifest := `
node "weighted" {
  handler = "test.source"
  config  = number

  output "out" {
    type = number
  }
}

node "broken_type" {
  handler = "test.source"
  config  = list(any)

  output "out" {
    type = number
  }
}
`
	result := testutil.RunIntegrationTest(t, map[string]string{"types.hcl": manifest}, testutil.NewCountingModule())

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "types.hcl")
}
