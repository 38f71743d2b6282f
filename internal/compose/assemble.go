package compose

import (
	"fmt"

	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// AssembleOption customises Assemble.
type AssembleOption func(*assembleOptions)

type assembleOptions struct {
	configs map[string]cty.Value
}

// WithConfigs supplies configuration per definition id. Every instance of a
// definition in the chain receives the same value.
func WithConfigs(configs map[string]cty.Value) AssembleOption {
	return func(o *assembleOptions) { o.configs = configs }
}

type offer struct {
	from     port.Ref
	ty       cty.Type
	consumed bool
}

// InstanceID names the i-th (zero-based) element of a chain.
func InstanceID(c Chain, i int) string {
	return fmt.Sprintf("%s_%d", c[i].ID, i+1)
}

// SlotName is the external slot an unfed input becomes.
func SlotName(instance, input string) string {
	return instance + "_" + input
}

// Assemble instantiates c into a new graph. Each input is connected to the
// earliest unconsumed output of exactly the same type produced upstream.
// Inputs with no such output are bound to external slots named by SlotName.
func Assemble(c Chain, opts ...AssembleOption) (*graph.Graph, error) {
	var o assembleOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := graph.New()
	var offers []*offer

	for i, def := range c {
		id := InstanceID(c, i)

		var instOpts []graph.InstanceOption
		if cfg, ok := o.configs[def.ID]; ok {
			instOpts = append(instOpts, graph.WithConfig(cfg))
		}
		if err := g.AddInstance(def, id, instOpts...); err != nil {
			return nil, err
		}

		for _, in := range def.Inputs {
			if src := take(offers, in.Type); src != nil {
				if err := g.Connect(src.from.Instance, src.from.Port, id, in.Name); err != nil {
					return nil, err
				}
				continue
			}
			if err := g.BindExternal(SlotName(id, in.Name), id, in.Name); err != nil {
				return nil, err
			}
		}

		for _, out := range def.Outputs {
			offers = append(offers, &offer{from: port.Ref{Instance: id, Port: out.Name}, ty: out.Type})
		}
	}
	return g, nil
}

func take(offers []*offer, ty cty.Type) *offer {
	for _, of := range offers {
		if !of.consumed && of.ty.Equals(ty) {
			of.consumed = true
			return of
		}
	}
	return nil
}
