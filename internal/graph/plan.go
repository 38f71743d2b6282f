package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/fxgraph/internal/dag"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Binding is the resolved source of one declared input in a Plan.
type Binding struct {
	Input  port.Descriptor
	Source Source
	// Upstream is the plan index of the source instance, or -1 for an
	// external slot.
	Upstream int
}

// Plan is an immutable, validated snapshot of a Graph. It is safe for
// concurrent use.
type Plan struct {
	version   uint64
	instances []*Instance
	index     map[string]int
	inputs    [][]Binding
	deps      *dag.Graph
	slots     map[string]cty.Type
}

// Validate checks the whole graph: it fails with a *CycleError if any cycle
// exists, and otherwise with an *UnboundInputError for every input that has
// no source. The result is cached until the graph is mutated.
func (g *Graph) Validate() error {
	_, err := g.Plan()
	return err
}

// Plan validates the graph if it changed since the last validation and
// returns the resulting snapshot.
func (g *Graph) Plan() (*Plan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.planValid && g.planVersion == g.version {
		return g.plan, g.planErr
	}

	p, err := g.compile()
	g.plan, g.planErr = p, err
	g.planVersion = g.version
	g.planValid = true
	return p, err
}

func (g *Graph) compile() (*Plan, error) {
	p := &Plan{
		version:   g.version,
		instances: append([]*Instance(nil), g.instances...),
		index:     make(map[string]int, len(g.instances)),
		inputs:    make([][]Binding, len(g.instances)),
		deps:      dag.New(),
		slots:     make(map[string]cty.Type, len(g.slots)),
	}
	for k, v := range g.slots {
		p.slots[k] = v
	}
	for i, inst := range g.instances {
		p.index[inst.ID] = i
		p.deps.AddNode(inst.ID)
	}

	// Inputs are resolved per instance in declaration order so that the
	// dependency lists, and with them evaluation order, are deterministic.
	var unbound *multierror.Error
	for i, inst := range g.instances {
		for _, in := range inst.Definition.Inputs {
			to := port.Ref{Instance: inst.ID, Port: in.Name}
			e, ok := g.bound[to]
			if !ok {
				unbound = multierror.Append(unbound, &UnboundInputError{Instance: inst.ID, Port: in.Name})
				continue
			}
			src := g.edges[e].From
			b := Binding{Input: in, Source: src, Upstream: -1}
			if !src.External() {
				b.Upstream = p.index[src.Port.Instance]
				if err := p.deps.AddEdge(b.Upstream, i); err != nil {
					return nil, fmt.Errorf("error validating dependency graph: %w", err)
				}
			}
			p.inputs[i] = append(p.inputs[i], b)
		}
	}

	if err := p.deps.DetectCycles(); err != nil {
		return nil, cycleError(err)
	}
	if unbound != nil {
		if len(unbound.Errors) == 1 {
			return nil, unbound.Errors[0]
		}
		unbound.ErrorFormat = listFormat
		return nil, unbound
	}
	return p, nil
}

func cycleError(err error) error {
	var ce *dag.CycleError
	if errors.As(err, &ce) {
		return &CycleError{Instances: ce.Nodes}
	}
	return err
}

// listFormat renders aggregated validation errors one per line.
func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("graph validation failed:\n- %s", strings.Join(lines, "\n- "))
}

// Version is the graph version this plan was compiled from.
func (p *Plan) Version() uint64 { return p.version }

// Len returns the number of instances.
func (p *Plan) Len() int { return len(p.instances) }

// Instance returns the instance at plan index i.
func (p *Plan) Instance(i int) *Instance { return p.instances[i] }

// Lookup returns the plan index of an instance id.
func (p *Plan) Lookup(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// Inputs returns the resolved bindings of instance i, in input declaration order.
func (p *Plan) Inputs(i int) []Binding { return p.inputs[i] }

// Dependents returns the distinct instances reading an output of instance i.
func (p *Plan) Dependents(i int) []int { return p.deps.Dependents(i) }

// Dependencies returns the distinct instances instance i reads from.
func (p *Plan) Dependencies(i int) []int { return p.deps.Dependencies(i) }

// SlotType returns the type of an external slot.
func (p *Plan) SlotType(slot string) (cty.Type, bool) {
	ty, ok := p.slots[slot]
	return ty, ok
}

// Closure returns the instances needed to compute the roots, dependencies
// first.
func (p *Plan) Closure(roots []int) ([]int, error) {
	order, err := p.deps.Closure(roots)
	if err != nil {
		return nil, cycleError(err)
	}
	return order, nil
}
