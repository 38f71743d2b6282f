package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/port"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code: every manifest must name a registered handler, must not shadow a Go
// definition, and must declare the ports its handler expects with the same
// types.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs *multierror.Error
	logger := ctxlog.FromContext(ctx)

	seen := make(map[string]struct{}, len(r.manifests))
	for _, m := range r.manifests {
		if _, dup := seen[m.ID]; dup {
			errs = multierror.Append(errs, fmt.Errorf("node '%s': declared by more than one manifest", m.ID))
			continue
		}
		seen[m.ID] = struct{}{}

		if _, ok := r.definitions[m.ID]; ok && !r.bound[m.ID] {
			errs = multierror.Append(errs, fmt.Errorf("node '%s': manifest conflicts with a definition registered in Go", m.ID))
			continue
		}

		h, ok := r.handlers[m.Handler]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("node '%s': handler '%s' is not registered", m.ID, m.Handler))
			continue
		}
		if h.Eval == nil {
			errs = multierror.Append(errs, fmt.Errorf("node '%s': handler '%s' has no evaluation function", m.ID, m.Handler))
			continue
		}

		if h.Inputs == nil && h.Outputs == nil {
			logger.Warn("Handler declares no expected ports, which disables the manifest parity check.", "node", m.ID, "handler", m.Handler)
			continue
		}
		for _, err := range r.comparePorts(m.ID, port.Input, m.Inputs, h.Inputs) {
			errs = multierror.Append(errs, err)
		}
		for _, err := range r.comparePorts(m.ID, port.Output, m.Outputs, h.Outputs) {
			errs = multierror.Append(errs, err)
		}
	}

	if errs != nil {
		errs.ErrorFormat = listFormat
	}
	return errs.ErrorOrNil()
}

func (r *Registry) comparePorts(id string, dir port.Direction, declared, expected []port.Descriptor) []error {
	var errs []error
	want := make(map[string]port.Descriptor, len(expected))
	for _, p := range expected {
		want[p.Name] = p
	}
	have := make(map[string]port.Descriptor, len(declared))
	for _, p := range declared {
		have[p.Name] = p
	}

	for _, p := range expected {
		if _, ok := have[p.Name]; !ok {
			errs = append(errs, fmt.Errorf("node '%s': handler expects %s '%s' which is not declared in manifest", id, dir, p.Name))
		}
	}
	for _, p := range declared {
		exp, ok := want[p.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("node '%s': manifest declares %s '%s' which the handler does not expect", id, dir, p.Name))
			continue
		}
		if !exp.Type.Equals(p.Type) {
			errs = append(errs, fmt.Errorf("node '%s', %s '%s': type mismatch. Manifest declares '%s' but handler expects '%s'",
				id, dir, p.Name, r.TypeName(p.Type), r.TypeName(exp.Type)))
		}
	}
	return errs
}

func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("registry validation failed:\n- %s", strings.Join(lines, "\n- "))
}
