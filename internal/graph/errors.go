package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Sentinels for errors.Is. Every typed error below matches exactly one.
var (
	ErrDuplicateInstance = errors.New("duplicate instance")
	ErrUnknownInstance   = errors.New("unknown instance")
	ErrUnknownPort       = errors.New("unknown port")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrPortAlreadyBound  = errors.New("port already bound")
	ErrInvalidConfig     = errors.New("invalid instance config")
	ErrCycle             = errors.New("cycle")
	ErrUnboundInput      = errors.New("unbound input")
	ErrEvaluation        = errors.New("evaluation failed")

	// ErrOutputContract and ErrNodePanic are wrapped inside an
	// EvaluationError when a node misbehaves rather than failing cleanly.
	ErrOutputContract = errors.New("output contract violated")
	ErrNodePanic      = errors.New("node panicked")
)

// DuplicateInstanceError is returned by AddInstance when the id is taken.
type DuplicateInstanceError struct {
	ID string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("instance %q already exists", e.ID)
}

func (e *DuplicateInstanceError) Is(target error) bool { return target == ErrDuplicateInstance }

// UnknownInstanceError is returned when a wiring call names a missing instance.
type UnknownInstanceError struct {
	ID string
}

func (e *UnknownInstanceError) Error() string {
	return fmt.Sprintf("instance %q not found", e.ID)
}

func (e *UnknownInstanceError) Is(target error) bool { return target == ErrUnknownInstance }

// UnknownPortError is returned when an instance has no port with that name
// in the required direction.
type UnknownPortError struct {
	Instance   string
	Definition string
	Port       string
	Direction  port.Direction
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("instance %q (%s) has no %s port %q", e.Instance, e.Definition, e.Direction, e.Port)
}

func (e *UnknownPortError) Is(target error) bool { return target == ErrUnknownPort }

// TypeMismatchError is returned when a source's type differs from the
// destination input's type.
type TypeMismatchError struct {
	From Source
	To   port.Ref
	Have cty.Type
	Want cty.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot connect %s (%s) to %s (%s)",
		e.From, port.TypeName(e.Have), e.To, port.TypeName(e.Want))
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// PortAlreadyBoundError is returned when an input already has a source.
type PortAlreadyBoundError struct {
	To       port.Ref
	Existing Source
}

func (e *PortAlreadyBoundError) Error() string {
	return fmt.Sprintf("input %s is already bound to %s", e.To, e.Existing)
}

func (e *PortAlreadyBoundError) Is(target error) bool { return target == ErrPortAlreadyBound }

// ConfigError is returned by AddInstance when the supplied configuration
// does not fit the definition.
type ConfigError struct {
	Instance string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("instance %q: invalid config: %v", e.Instance, e.Err)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
func (e *ConfigError) Unwrap() error        { return e.Err }

// CycleError names the instances forming a dependency cycle, in path order.
type CycleError struct {
	Instances []string
}

func (e *CycleError) Error() string {
	if len(e.Instances) == 0 {
		return "cycle detected"
	}
	path := append(append([]string{}, e.Instances...), e.Instances[0])
	return fmt.Sprintf("cycle detected: %s", strings.Join(path, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// UnboundInputError reports an input with no source. Slot is set when the
// input is bound to an external slot for which no value was supplied.
type UnboundInputError struct {
	Instance string
	Port     string
	Slot     string
}

func (e *UnboundInputError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("input %s.%s: no value supplied for external slot %q", e.Instance, e.Port, e.Slot)
	}
	return fmt.Sprintf("input %s.%s is not bound", e.Instance, e.Port)
}

func (e *UnboundInputError) Is(target error) bool { return target == ErrUnboundInput }

// EvaluationError reports a node that failed during evaluation. Discarded
// lists the outputs computed earlier in the same pass that were thrown away,
// in evaluation order; DiscardedValues holds their values.
type EvaluationError struct {
	Instance        string
	Definition      string
	Err             error
	Discarded       []port.Ref
	DiscardedValues map[port.Ref]cty.Value
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of %q (%s) failed: %v", e.Instance, e.Definition, e.Err)
}

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }
func (e *EvaluationError) Unwrap() error        { return e.Err }
