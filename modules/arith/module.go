// Package arith provides pure numeric nodes.
package arith

import (
	"context"
	"fmt"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// Double multiplies its input by two.
	Double = node.MustDefinition(node.Definition{
		ID:          "double",
		Description: "Multiplies a number by two.",
		Inputs:      []port.Descriptor{port.In("in", cty.Number)},
		Outputs:     []port.Descriptor{port.Out("out", cty.Number)},
		Pure:        true,
		Eval: func(_ context.Context, call node.Call) (node.Values, error) {
			return node.Values{"out": call.Inputs["in"].Multiply(cty.NumberIntVal(2))}, nil
		},
	})

	// Add sums two numbers.
	Add = node.MustDefinition(node.Definition{
		ID:          "add",
		Description: "Adds two numbers.",
		Inputs:      []port.Descriptor{port.In("a", cty.Number), port.In("b", cty.Number)},
		Outputs:     []port.Descriptor{port.Out("sum", cty.Number)},
		Pure:        true,
		Eval: func(_ context.Context, call node.Call) (node.Values, error) {
			return node.Values{"sum": call.Inputs["a"].Add(call.Inputs["b"])}, nil
		},
	})

	// Scale multiplies its input by the configured factor.
	Scale = node.MustDefinition(node.Definition{
		ID:          "scale",
		Description: "Multiplies a number by a configured factor.",
		Inputs:      []port.Descriptor{port.In("in", cty.Number)},
		Outputs:     []port.Descriptor{port.Out("out", cty.Number)},
		ConfigType:  cty.Number,
		Pure:        true,
		Eval: func(_ context.Context, call node.Call) (node.Values, error) {
			return node.Values{"out": call.Inputs["in"].Multiply(call.Config)}, nil
		},
	})

	// Divide divides a by b and fails on division by zero.
	Divide = node.MustDefinition(node.Definition{
		ID:          "divide",
		Description: "Divides a by b.",
		Inputs:      []port.Descriptor{port.In("a", cty.Number), port.In("b", cty.Number)},
		Outputs:     []port.Descriptor{port.Out("quotient", cty.Number)},
		Pure:        true,
		Eval: func(_ context.Context, call node.Call) (node.Values, error) {
			b := call.Inputs["b"]
			if b.Equals(cty.Zero).True() {
				return nil, fmt.Errorf("division by zero")
			}
			return node.Values{"quotient": call.Inputs["a"].Divide(b)}, nil
		},
	})
)

// Register registers the definitions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDefinition(Double)
	r.RegisterDefinition(Add)
	r.RegisterDefinition(Scale)
	r.RegisterDefinition(Divide)
}
