// Package constant provides source nodes whose single output is the value
// baked into the instance configuration.
package constant

import (
	"context"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Definition returns a constant node of the given type. The instance config
// must convert to ty and becomes the "value" output.
func Definition(id string, ty cty.Type) *node.Definition {
	return node.MustDefinition(node.Definition{
		ID:          id,
		Description: "Emits its configured value.",
		Outputs:     []port.Descriptor{port.Out("value", ty)},
		ConfigType:  ty,
		Pure:        true,
		Eval:        evalConst,
	})
}

func evalConst(_ context.Context, call node.Call) (node.Values, error) {
	return node.Values{"value": call.Config}, nil
}

// Number, String and Bool are the constant definitions this module registers.
var (
	Number = Definition("const", cty.Number)
	String = Definition("const_string", cty.String)
	Bool   = Definition("const_bool", cty.Bool)
)

// Register registers the definitions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDefinition(Number)
	r.RegisterDefinition(String)
	r.RegisterDefinition(Bool)
}
