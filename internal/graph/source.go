package graph

import (
	"github.com/vk/fxgraph/internal/port"
)

// Source is where an input's value comes from: either an output port of
// another instance or a named external slot filled in at evaluation time.
type Source struct {
	// Port is the upstream output. It is the zero Ref for external sources.
	Port port.Ref
	// Slot is the external slot name. It is empty for port sources.
	Slot string
}

// FromPort returns a source reading an upstream output.
func FromPort(instance, output string) Source {
	return Source{Port: port.Ref{Instance: instance, Port: output}}
}

// FromSlot returns a source reading an external slot.
func FromSlot(slot string) Source {
	return Source{Slot: slot}
}

// External reports whether s reads an external slot.
func (s Source) External() bool { return s.Slot != "" }

func (s Source) String() string {
	if s.External() {
		return "external " + s.Slot
	}
	return s.Port.String()
}

// Edge connects a source to an input port.
type Edge struct {
	From Source
	To   port.Ref
}
