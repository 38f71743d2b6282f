// Package print provides a pass-through node that writes the value it sees.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives one line per evaluation. Nil means os.Stdout.
	Out io.Writer
}

// Definition returns the print node bound to the module's writer.
func (m *Module) Definition() *node.Definition {
	return node.MustDefinition(node.Definition{
		ID:          "print",
		Description: "Writes a string, prefixed with the instance id, and passes it on.",
		Inputs:      []port.Descriptor{port.In("value", cty.String)},
		Outputs:     []port.Descriptor{port.Out("value", cty.String)},
		Eval:        m.onEval,
	})
}

func (m *Module) onEval(ctx context.Context, call node.Call) (node.Values, error) {
	v := call.Inputs["value"]
	ctxlog.FromContext(ctx).Info("Printing input", "instance", call.Instance)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	if _, err := fmt.Fprintf(out, "%s: %s\n", call.Instance, v.AsString()); err != nil {
		return nil, err
	}
	return node.Values{"value": v}, nil
}

// Register registers the definition with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDefinition(m.Definition())
}
