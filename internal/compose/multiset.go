package compose

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Multiset counts value types. The zero value is empty and ready to use.
type Multiset struct {
	counts map[string]int
	types  map[string]cty.Type
}

// key identifies a type. cty.Type values are not always comparable, so
// GoString stands in for them.
func key(ty cty.Type) string { return ty.GoString() }

// MultisetOf returns the multiset of the types of ports.
func MultisetOf(ports []port.Descriptor) Multiset {
	var m Multiset
	for _, p := range ports {
		m.Add(p.Type, 1)
	}
	return m
}

// Add adds n occurrences of ty. A negative n removes occurrences; the count
// never drops below zero.
func (m *Multiset) Add(ty cty.Type, n int) {
	if m.counts == nil {
		m.counts = make(map[string]int)
		m.types = make(map[string]cty.Type)
	}
	k := key(ty)
	c := m.counts[k] + n
	if c < 0 {
		c = 0
	}
	m.counts[k] = c
	m.types[k] = ty
}

// Count returns how many occurrences of ty m holds.
func (m Multiset) Count(ty cty.Type) int { return m.counts[key(ty)] }

// Len returns the total number of occurrences.
func (m Multiset) Len() int {
	n := 0
	for _, c := range m.counts {
		n += c
	}
	return n
}

// Empty reports whether every count is zero.
func (m Multiset) Empty() bool { return m.Len() == 0 }

// Contains reports whether m holds at least as many of each type as other.
func (m Multiset) Contains(other Multiset) bool {
	for k, c := range other.counts {
		if c > m.counts[k] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of m.
func (m Multiset) Clone() Multiset {
	var out Multiset
	for k, c := range m.counts {
		out.Add(m.types[k], c)
	}
	return out
}

// Apply returns m minus consumed plus produced.
func (m Multiset) Apply(consumed, produced Multiset) Multiset {
	out := m.Clone()
	for k, c := range consumed.counts {
		out.Add(consumed.types[k], -c)
	}
	for k, c := range produced.counts {
		out.Add(produced.types[k], c)
	}
	return out
}

// String renders the non-zero counts, e.g. "{number: 2, string: 1}".
func (m Multiset) String() string {
	var parts []string
	for k, c := range m.counts {
		if c == 0 {
			continue
		}
		parts = append(parts, port.TypeName(m.types[k])+": "+strconv.Itoa(c))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

