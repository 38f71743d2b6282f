package constant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func TestConstants(t *testing.T) {
	r := registry.New()
	r.RegisterModules(&Module{})

	def, ok := r.Definition("const_string")
	require.True(t, ok)

	g := graph.New()
	require.NoError(t, g.AddInstance(def, "greeting", graph.WithConfig(cty.StringVal("hi"))))
	require.NoError(t, g.AddInstance(Number, "five", graph.WithConfig(cty.NumberIntVal(5))))

	res, err := evaluator.Evaluate(context.Background(), g, nil,
		port.Ref{Instance: "greeting", Port: "value"},
		port.Ref{Instance: "five", Port: "value"})
	require.NoError(t, err)

	v, _ := res.Get("greeting", "value")
	assert.Equal(t, "hi", v.AsString())
	v, _ = res.Get("five", "value")
	assert.True(t, v.RawEquals(cty.NumberIntVal(5)))
}
