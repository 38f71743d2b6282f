package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

func TestEnv(t *testing.T) {
	t.Setenv("FXGRAPH_TEST_VAR", "on")

	g := graph.New()
	require.NoError(t, g.AddInstance(Env, "flag", graph.WithConfig(cty.StringVal("FXGRAPH_TEST_VAR"))))
	require.NoError(t, g.AddInstance(Env, "missing", graph.WithConfig(cty.StringVal("FXGRAPH_TEST_UNSET_VAR"))))

	res, err := evaluator.Evaluate(context.Background(), g, nil)
	require.NoError(t, err)

	v, _ := res.Get("flag", "value")
	assert.Equal(t, "on", v.AsString())
	set, _ := res.Get("missing", "set")
	assert.True(t, set.False())
}
