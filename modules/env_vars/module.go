// Package env_vars provides a node that reads one process environment
// variable.
package env_vars

import (
	"context"
	"os"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Env reads the variable named by the instance config. It is not pure: the
// environment can change between passes.
var Env = node.MustDefinition(node.Definition{
	ID:          "env",
	Description: "Reads the environment variable named by the config.",
	Outputs:     []port.Descriptor{port.Out("value", cty.String), port.Out("set", cty.Bool)},
	ConfigType:  cty.String,
	Eval:        onEvalEnv,
})

func onEvalEnv(_ context.Context, call node.Call) (node.Values, error) {
	v, ok := os.LookupEnv(call.Config.AsString())
	return node.Values{"value": cty.StringVal(v), "set": cty.BoolVal(ok)}, nil
}

// Register registers the definition with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDefinition(Env)
}
