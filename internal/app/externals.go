package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ParseAssignments splits "slot=EXPR" pairs. A later pair for the same slot
// replaces an earlier one.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		slot, expr, ok := strings.Cut(p, "=")
		slot = strings.TrimSpace(slot)
		if !ok || slot == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected slot=EXPR", p)
		}
		out[slot] = expr
	}
	return out, nil
}

// ParseExternals evaluates each HCL expression in sets and converts it to
// the type of the slot it is assigned to. Expressions are evaluated without
// variables or functions.
func ParseExternals(g *graph.Graph, sets map[string]string) (map[string]cty.Value, error) {
	slots := g.Slots()

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]cty.Value, len(sets))
	for _, name := range names {
		ty, ok := slots[name]
		if !ok {
			return nil, fmt.Errorf("unknown external slot %q", name)
		}
		v, err := evalExpr(name, sets[name])
		if err != nil {
			return nil, err
		}
		cv, err := convert.Convert(v, ty)
		if err != nil {
			return nil, fmt.Errorf("slot %q: cannot use value as %s: %w", name, port.TypeName(ty), err)
		}
		out[name] = cv
	}
	return out, nil
}

func evalExpr(slot, src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), slot, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("slot %q: %w", slot, diags)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("slot %q: %w", slot, diags)
	}
	return v, nil
}
