package arith

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

func TestArith(t *testing.T) {
	// --- Arrange ---
	// ((x * 2) + (x * 3)) / y
	g := graph.New()
	require.NoError(t, g.AddInstance(Double, "twice"))
	require.NoError(t, g.AddInstance(Scale, "thrice", graph.WithConfig(cty.NumberIntVal(3))))
	require.NoError(t, g.AddInstance(Add, "sum"))
	require.NoError(t, g.AddInstance(Divide, "ratio"))
	require.NoError(t, g.BindExternal("x", "twice", "in"))
	require.NoError(t, g.BindExternal("x", "thrice", "in"))
	require.NoError(t, g.Connect("twice", "out", "sum", "a"))
	require.NoError(t, g.Connect("thrice", "out", "sum", "b"))
	require.NoError(t, g.Connect("sum", "sum", "ratio", "a"))
	require.NoError(t, g.BindExternal("y", "ratio", "b"))
	want := port.Ref{Instance: "ratio", Port: "quotient"}

	t.Run("computes", func(t *testing.T) {
		// --- Act ---
		res, err := evaluator.Evaluate(context.Background(), g,
			map[string]cty.Value{"x": cty.NumberIntVal(4), "y": cty.NumberIntVal(2)}, want)

		// --- Assert ---
		require.NoError(t, err)
		assert.True(t, res[want].RawEquals(cty.NumberIntVal(10)))
	})

	t.Run("division by zero fails the pass", func(t *testing.T) {
		_, err := evaluator.Evaluate(context.Background(), g,
			map[string]cty.Value{"x": cty.NumberIntVal(4), "y": cty.Zero}, want)

		var evalErr *graph.EvaluationError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, "ratio", evalErr.Instance)
		assert.Len(t, evalErr.Discarded, 3)
	})
}
