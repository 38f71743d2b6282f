package port

import (
	"fmt"
	"strings"
)

// Ref addresses one port of one node instance.
type Ref struct {
	Instance string
	Port     string
}

// String renders the ref as "instance.port".
func (r Ref) String() string {
	return r.Instance + "." + r.Port
}

// ParseRef parses the "instance.port" form produced by Ref.String.
func ParseRef(s string) (Ref, error) {
	inst, p, ok := strings.Cut(s, ".")
	if !ok || !ValidName(inst) || !ValidName(p) {
		return Ref{}, fmt.Errorf("invalid port reference %q: expected <instance>.<port>", s)
	}
	return Ref{Instance: inst, Port: p}, nil
}
