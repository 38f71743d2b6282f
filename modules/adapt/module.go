// Package adapt provides explicit conversion nodes. Ports only connect when
// their types are identical, so a graph that needs a number where a string
// is produced places one of these adapters in between.
package adapt

import (
	"context"
	"fmt"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Definition returns a node converting its "in" port of type from into an
// "out" port of type to. It panics if cty knows no conversion between them.
func Definition(id string, from, to cty.Type) *node.Definition {
	if convert.GetConversionUnsafe(from, to) == nil {
		panic(fmt.Sprintf("adapt: no conversion from %s to %s", from.FriendlyName(), to.FriendlyName()))
	}
	return node.MustDefinition(node.Definition{
		ID:          id,
		Description: fmt.Sprintf("Converts %s to %s.", from.FriendlyName(), to.FriendlyName()),
		Inputs:      []port.Descriptor{port.In("in", from)},
		Outputs:     []port.Descriptor{port.Out("out", to)},
		Pure:        true,
		Eval: func(_ context.Context, call node.Call) (node.Values, error) {
			out, err := convert.Convert(call.Inputs["in"], to)
			if err != nil {
				return nil, err
			}
			return node.Values{"out": out}, nil
		},
	})
}

var (
	NumberToString = Definition("number_to_string", cty.Number, cty.String)
	StringToNumber = Definition("string_to_number", cty.String, cty.Number)
	BoolToString   = Definition("bool_to_string", cty.Bool, cty.String)
)

// Register registers the definitions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDefinition(NumberToString)
	r.RegisterDefinition(StringToNumber)
	r.RegisterDefinition(BoolToString)
}
