package compose

import (
	"sort"
	"strings"

	"github.com/vk/fxgraph/internal/node"
)

// DefaultSteps bounds chain length when Generate gets no positive limit.
const DefaultSteps = 4

// Chain is an ordered list of definitions, upstream first.
type Chain []*node.Definition

func (c Chain) String() string {
	ids := make([]string, len(c))
	for i, d := range c {
		ids[i] = d.ID
	}
	return strings.Join(ids, " -> ")
}

type candidate struct {
	def     *node.Definition
	in, out Multiset
}

type state struct {
	available Multiset
	chain     Chain
}

// Generate searches breadth-first for chains of at most maxSteps
// definitions.
//
// The search starts from an empty multiset of available types. A definition
// applies when its input types are contained in the available ones; applying
// it consumes its inputs and adds its outputs. A chain is reported when its
// last definition consumes at least one value. Chains holding the same
// definitions in a different order are reported once, in the order found
// first.
func Generate(defs []*node.Definition, maxSteps int) []Chain {
	if maxSteps <= 0 {
		maxSteps = DefaultSteps
	}

	candidates := make([]candidate, len(defs))
	for i, d := range defs {
		candidates[i] = candidate{def: d, in: MultisetOf(d.Inputs), out: MultisetOf(d.Outputs)}
	}

	seen := make(map[string]bool)
	queue := []state{{}}
	var results []Chain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.chain) >= maxSteps {
			continue
		}

		for _, c := range candidates {
			if !cur.available.Contains(c.in) {
				continue
			}
			chain := append(cur.chain[:len(cur.chain):len(cur.chain)], c.def)
			k := chainKey(chain)
			if seen[k] {
				continue
			}
			seen[k] = true

			queue = append(queue, state{available: cur.available.Apply(c.in, c.out), chain: chain})
			if len(c.def.Inputs) > 0 {
				results = append(results, chain)
			}
		}
	}
	return results
}

func chainKey(c Chain) string {
	ids := make([]string, len(c))
	for i, d := range c {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
