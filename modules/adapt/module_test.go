package adapt

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

func TestAdapters(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddInstance(StringToNumber, "parse"))
	require.NoError(t, g.AddInstance(NumberToString, "format"))
	require.NoError(t, g.BindExternal("text", "parse", "in"))
	require.NoError(t, g.Connect("parse", "out", "format", "in"))
	want := port.Ref{Instance: "format", Port: "out"}

	res, err := evaluator.Evaluate(context.Background(), g, map[string]cty.Value{"text": cty.StringVal("2.50")}, want)
	require.NoError(t, err)
	assert.Equal(t, "2.5", res[want].AsString())

	_, err = evaluator.Evaluate(context.Background(), g, map[string]cty.Value{"text": cty.StringVal("two")}, want)
	assert.ErrorIs(t, err, graph.ErrEvaluation)
}

func TestDefinitionPanicsWithoutConversion(t *testing.T) {
	assert.Panics(t, func() { Definition("bad", cty.List(cty.Number), cty.Bool) })
}

func TestStrictWiringNeedsAdapter(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddInstance(NumberToString, "a"))
	require.NoError(t, g.AddInstance(NumberToString, "b"))

	err := g.Connect("a", "out", "b", "in")
	assert.ErrorIs(t, err, graph.ErrTypeMismatch)
}
