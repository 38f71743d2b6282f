package evaluator

import (
	"sort"

	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Result maps each wanted output to its value.
type Result map[port.Ref]cty.Value

// Get returns the value of instance.output.
func (r Result) Get(instance, output string) (cty.Value, bool) {
	v, ok := r[port.Ref{Instance: instance, Port: output}]
	return v, ok
}

// Refs returns the result keys sorted by instance, then port.
func (r Result) Refs() []port.Ref {
	refs := make([]port.Ref, 0, len(r))
	for ref := range r {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Instance != refs[j].Instance {
			return refs[i].Instance < refs[j].Instance
		}
		return refs[i].Port < refs[j].Port
	})
	return refs
}
