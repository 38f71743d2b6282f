package node

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Values maps port names to values, for both the inputs handed to an
// evaluation and the outputs it returns.
type Values map[string]cty.Value

// Call is everything an evaluation function receives for one invocation.
type Call struct {
	// Instance is the id of the graph instance being evaluated.
	Instance string
	// Config is the instance's baked-in configuration, already converted to
	// the definition's ConfigType. It is cty.NilVal when the definition takes
	// no configuration.
	Config cty.Value
	// Inputs holds exactly one value per declared input port.
	Inputs Values
}

// EvalFunc computes a node's outputs from its inputs. It must not mutate
// anything the graph can observe.
type EvalFunc func(ctx context.Context, call Call) (Values, error)

// Definition is the reusable description of a kind of node.
type Definition struct {
	ID          string
	Description string
	Inputs      []port.Descriptor
	Outputs     []port.Descriptor
	// ConfigType is the type of the per-instance configuration. cty.NilType
	// means instances take no configuration.
	ConfigType cty.Type
	// Pure marks evaluation as free of external effects, which allows the
	// evaluator to run it concurrently with other pure nodes.
	Pure bool
	Eval EvalFunc
}

// NewDefinition validates def and returns a pointer suitable for sharing
// between graphs. Port directions are normalised from the slice they appear in.
func NewDefinition(def Definition) (*Definition, error) {
	var errs []string

	if !port.ValidName(def.ID) {
		errs = append(errs, fmt.Sprintf("invalid definition id %q", def.ID))
	}
	if def.Eval == nil {
		errs = append(errs, "missing evaluation function")
	}
	if len(def.Outputs) == 0 {
		errs = append(errs, "at least one output port is required")
	}

	def.Inputs = normalise(def.Inputs, port.Input, &errs)
	def.Outputs = normalise(def.Outputs, port.Output, &errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("node definition %q: %s", def.ID, strings.Join(errs, "; "))
	}
	return &def, nil
}

// MustDefinition is like NewDefinition but panics on error. It is meant for
// package-level definitions whose shape is fixed at compile time.
func MustDefinition(def Definition) *Definition {
	d, err := NewDefinition(def)
	if err != nil {
		panic(err)
	}
	return d
}

func normalise(ports []port.Descriptor, dir port.Direction, errs *[]string) []port.Descriptor {
	out := make([]port.Descriptor, len(ports))
	seen := make(map[string]struct{}, len(ports))
	for i, p := range ports {
		p.Direction = dir
		if !port.ValidName(p.Name) {
			*errs = append(*errs, fmt.Sprintf("invalid %s port name %q", dir, p.Name))
		}
		if _, dup := seen[p.Name]; dup {
			*errs = append(*errs, fmt.Sprintf("duplicate %s port %q", dir, p.Name))
		}
		if p.Type == cty.NilType {
			*errs = append(*errs, fmt.Sprintf("%s port %q has no type", dir, p.Name))
		}
		seen[p.Name] = struct{}{}
		out[i] = p
	}
	return out
}

// Input looks up an input port by name.
func (d *Definition) Input(name string) (port.Descriptor, bool) {
	return find(d.Inputs, name)
}

// Output looks up an output port by name.
func (d *Definition) Output(name string) (port.Descriptor, bool) {
	return find(d.Outputs, name)
}

// Port looks up a port of the given direction.
func (d *Definition) Port(dir port.Direction, name string) (port.Descriptor, bool) {
	if dir == port.Input {
		return d.Input(name)
	}
	return d.Output(name)
}

func find(ports []port.Descriptor, name string) (port.Descriptor, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return port.Descriptor{}, false
}

// HasConfig reports whether instances of d carry configuration.
func (d *Definition) HasConfig() bool {
	return d.ConfigType != cty.NilType
}

// ErrMissingInput is returned by Call accessors when a port has no value.
var ErrMissingInput = errors.New("missing input")

// Get returns the named input or ErrMissingInput.
func (c Call) Get(name string) (cty.Value, error) {
	v, ok := c.Inputs[name]
	if !ok || v == cty.NilVal {
		return cty.NilVal, fmt.Errorf("%w %q", ErrMissingInput, name)
	}
	return v, nil
}
