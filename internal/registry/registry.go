package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Handler is the Go side of a manifest-declared node.
type Handler struct {
	Eval node.EvalFunc
	// Inputs and Outputs, when set, are the ports the Go code expects.
	// ValidateRegistry checks them against the manifest.
	Inputs  []port.Descriptor
	Outputs []port.Descriptor
}

// Registry holds the definitions, handlers and named value types for a
// single application instance.
type Registry struct {
	definitions map[string]*node.Definition
	handlers    map[string]*Handler
	types       map[string]cty.Type
	manifests   []*Manifest
	pending     []manifestSource
	// bound marks definitions that were created from a manifest.
	bound map[string]bool
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*node.Definition),
		handlers:    make(map[string]*Handler),
		types:       make(map[string]cty.Type),
		bound:       make(map[string]bool),
	}
}

// RegisterModules calls Register on every module in order.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// RegisterDefinition makes a complete definition available under its id.
func (r *Registry) RegisterDefinition(def *node.Definition) {
	if _, exists := r.definitions[def.ID]; exists {
		panic(fmt.Sprintf("node definition '%s' already registered", def.ID))
	}
	slog.Debug("Registering node definition.", "id", def.ID)
	r.definitions[def.ID] = def
}

// RegisterHandler registers a Go evaluation function for manifests to bind to.
func (r *Registry) RegisterHandler(name string, h *Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("node handler with name '%s' already registered", name))
	}
	slog.Debug("Registering node handler.", "name", name)
	r.handlers[name] = h
}

// RegisterType registers a named value type, typically a capsule type for a
// semantic tag, so manifests can refer to it by keyword.
func (r *Registry) RegisterType(name string, ty cty.Type) {
	if _, exists := r.types[name]; exists {
		panic(fmt.Sprintf("value type '%s' already registered", name))
	}
	slog.Debug("Registering value type.", "name", name)
	r.types[name] = ty
}

// Definition looks up a definition by id.
func (r *Registry) Definition(id string) (*node.Definition, bool) {
	d, ok := r.definitions[id]
	return d, ok
}

// Definitions returns every registered definition sorted by id.
func (r *Registry) Definitions() []*node.Definition {
	defs := make([]*node.Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Type looks up a named value type.
func (r *Registry) Type(name string) (cty.Type, bool) {
	ty, ok := r.types[name]
	return ty, ok
}

// TypeName renders ty the way a manifest would spell it: the registered
// keyword for named types, HCL type syntax otherwise.
func (r *Registry) TypeName(ty cty.Type) string {
	for name, t := range r.types {
		if t.Equals(ty) {
			return name
		}
	}
	if ty == cty.NilType || hasCapsule(ty) {
		return port.TypeName(ty)
	}
	return typeexpr.TypeString(ty)
}

func hasCapsule(ty cty.Type) bool {
	switch {
	case ty.IsCapsuleType():
		return true
	case ty.IsCollectionType():
		return hasCapsule(ty.ElementType())
	case ty.IsObjectType():
		for _, aty := range ty.AttributeTypes() {
			if hasCapsule(aty) {
				return true
			}
		}
	case ty.IsTupleType():
		for _, ety := range ty.TupleElementTypes() {
			if hasCapsule(ety) {
				return true
			}
		}
	}
	return false
}

// Manifests returns the manifests loaded so far, in load order.
func (r *Registry) Manifests() []*Manifest {
	return append([]*Manifest(nil), r.manifests...)
}
