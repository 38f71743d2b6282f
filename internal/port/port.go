package port

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Direction tells whether a port consumes or produces values.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Descriptor is the static description of one port of a node definition.
type Descriptor struct {
	Name      string
	Type      cty.Type
	Direction Direction
}

// In is shorthand for an input descriptor.
func In(name string, ty cty.Type) Descriptor {
	return Descriptor{Name: name, Type: ty, Direction: Input}
}

// Out is shorthand for an output descriptor.
func Out(name string, ty cty.Type) Descriptor {
	return Descriptor{Name: name, Type: ty, Direction: Output}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s: %s", d.Direction, d.Name, TypeName(d.Type))
}

// Compatible reports whether out may feed in. Directions must be output to
// input and the value types must be exactly equal.
func Compatible(out, in Descriptor) bool {
	if out.Direction != Output || in.Direction != Input {
		return false
	}
	if out.Type == cty.NilType || in.Type == cty.NilType {
		return false
	}
	return out.Type.Equals(in.Type)
}

// TypeName renders a value type for messages. Capsule types use their own
// name; everything else uses cty's friendly name.
func TypeName(ty cty.Type) string {
	if ty == cty.NilType {
		return "<nil>"
	}
	return ty.FriendlyName()
}

// ValidName reports whether s can be used as an instance id or port name.
// The separator used by Ref is not allowed.
func ValidName(s string) bool {
	return s != "" && !strings.ContainsAny(s, ". \t\n")
}
