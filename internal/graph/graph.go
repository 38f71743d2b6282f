package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Instance is one placement of a node definition in a graph.
type Instance struct {
	ID         string
	Definition *node.Definition
	// Config is the baked-in configuration converted to the definition's
	// ConfigType, or cty.NilVal when the definition takes none.
	Config cty.Value
}

// InstanceOption customises AddInstance.
type InstanceOption func(*instanceOptions)

type instanceOptions struct {
	config    cty.Value
	hasConfig bool
}

// WithConfig supplies the instance's baked-in configuration.
func WithConfig(v cty.Value) InstanceOption {
	return func(o *instanceOptions) {
		o.config = v
		o.hasConfig = true
	}
}

// Graph is a mutable typed node graph. Wiring calls are meant to be made by
// a single owner; Validate, Plan and the read accessors may be called from
// several goroutines once building is done.
type Graph struct {
	mu sync.Mutex

	instances []*Instance
	byID      map[string]int
	edges     []Edge
	bound     map[port.Ref]int // input -> index into edges
	slots     map[string]cty.Type

	version uint64

	// validated plan cache, keyed by version
	plan        *Plan
	planErr     error
	planVersion uint64
	planValid   bool
}

// New creates and returns an empty Graph.
func New() *Graph {
	return &Graph{
		byID:  make(map[string]int),
		bound: make(map[port.Ref]int),
		slots: make(map[string]cty.Type),
	}
}

// AddInstance places def in the graph under id.
func (g *Graph) AddInstance(def *node.Definition, id string, opts ...InstanceOption) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !port.ValidName(id) {
		return fmt.Errorf("invalid instance id %q", id)
	}
	if def == nil {
		return fmt.Errorf("instance %q: nil definition", id)
	}
	if _, exists := g.byID[id]; exists {
		return &DuplicateInstanceError{ID: id}
	}

	var o instanceOptions
	for _, opt := range opts {
		opt(&o)
	}
	cfg, err := bakeConfig(def, o)
	if err != nil {
		return &ConfigError{Instance: id, Err: err}
	}

	g.byID[id] = len(g.instances)
	g.instances = append(g.instances, &Instance{ID: id, Definition: def, Config: cfg})
	g.version++
	return nil
}

func bakeConfig(def *node.Definition, o instanceOptions) (cty.Value, error) {
	if !def.HasConfig() {
		if o.hasConfig {
			return cty.NilVal, fmt.Errorf("%s takes no configuration", def.ID)
		}
		return cty.NilVal, nil
	}
	if !o.hasConfig || o.config == cty.NilVal {
		return cty.NilVal, fmt.Errorf("%s requires a %s configuration", def.ID, port.TypeName(def.ConfigType))
	}
	cfg, err := convert.Convert(o.config, def.ConfigType)
	if err != nil {
		return cty.NilVal, err
	}
	if cfg.IsNull() || !cfg.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("configuration must be known and not null")
	}
	return cfg, nil
}

// Connect wires fromInstance.fromPort (an output) to toInstance.toPort (an input).
func (g *Graph) Connect(fromInstance, fromPort, toInstance, toPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	out, err := g.lookupPort(fromInstance, fromPort, port.Output)
	if err != nil {
		return err
	}
	in, err := g.lookupPort(toInstance, toPort, port.Input)
	if err != nil {
		return err
	}

	from := FromPort(fromInstance, fromPort)
	to := port.Ref{Instance: toInstance, Port: toPort}
	if !port.Compatible(out, in) {
		return &TypeMismatchError{From: from, To: to, Have: out.Type, Want: in.Type}
	}
	if err := g.checkUnbound(to); err != nil {
		return err
	}

	g.addEdge(Edge{From: from, To: to})
	return nil
}

// BindExternal feeds toInstance.toPort from the named external slot. A slot
// may feed several inputs, but they must all share one type.
func (g *Graph) BindExternal(slot, toInstance, toPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slot == "" {
		return fmt.Errorf("external slot name must not be empty")
	}
	in, err := g.lookupPort(toInstance, toPort, port.Input)
	if err != nil {
		return err
	}

	from := FromSlot(slot)
	to := port.Ref{Instance: toInstance, Port: toPort}
	if ty, ok := g.slots[slot]; ok && !ty.Equals(in.Type) {
		return &TypeMismatchError{From: from, To: to, Have: ty, Want: in.Type}
	}
	if err := g.checkUnbound(to); err != nil {
		return err
	}

	g.slots[slot] = in.Type
	g.addEdge(Edge{From: from, To: to})
	return nil
}

func (g *Graph) lookupPort(instance, name string, dir port.Direction) (port.Descriptor, error) {
	i, ok := g.byID[instance]
	if !ok {
		return port.Descriptor{}, &UnknownInstanceError{ID: instance}
	}
	def := g.instances[i].Definition
	p, ok := def.Port(dir, name)
	if !ok {
		return port.Descriptor{}, &UnknownPortError{Instance: instance, Definition: def.ID, Port: name, Direction: dir}
	}
	return p, nil
}

func (g *Graph) checkUnbound(to port.Ref) error {
	if e, ok := g.bound[to]; ok {
		return &PortAlreadyBoundError{To: to, Existing: g.edges[e].From}
	}
	return nil
}

func (g *Graph) addEdge(e Edge) {
	g.bound[e.To] = len(g.edges)
	g.edges = append(g.edges, e)
	g.version++
}

// Version increases with every successful mutation.
func (g *Graph) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Instances returns the instances in declaration order.
func (g *Graph) Instances() []*Instance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Instance(nil), g.instances...)
}

// Instance looks up an instance by id.
func (g *Graph) Instance(id string) (*Instance, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return g.instances[i], true
}

// Edges returns the edges in declaration order.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge(nil), g.edges...)
}

// Binding returns the source feeding an input, if any.
func (g *Graph) Binding(to port.Ref) (Source, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.bound[to]
	if !ok {
		return Source{}, false
	}
	return g.edges[e].From, true
}

// Slots returns the external slots and their types.
func (g *Graph) Slots() map[string]cty.Type {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]cty.Type, len(g.slots))
	for k, v := range g.slots {
		out[k] = v
	}
	return out
}

// SlotNames returns the external slot names, sorted.
func (g *Graph) SlotNames() []string {
	slots := g.Slots()
	names := make([]string, 0, len(slots))
	for k := range slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
