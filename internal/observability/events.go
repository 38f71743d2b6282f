package observability

import (
	"context"
	"time"
)

// EventType defines the category of an event.
type EventType string

const (
	EventPassStart EventType = "pass_start"
	EventPassDone  EventType = "pass_done"
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time
	Type      EventType
}

// PassEvent describes one evaluation pass.
type PassEvent struct {
	EventBase
	// Wanted holds the requested outputs as "instance.port" strings.
	Wanted []string
	// Instances is the size of the dependency closure, known once the pass
	// has been planned.
	Instances int
	Duration  time.Duration
	Err       error
}

// NodeEvent describes the evaluation of one instance inside a pass.
type NodeEvent struct {
	EventBase
	Instance   string
	Definition string
	Duration   time.Duration
	Err        error
}

// LifecycleHooks defines callbacks for evaluation observability. Nil
// callbacks are skipped. Node callbacks may be invoked concurrently when the
// evaluator runs a worker pool.
type LifecycleHooks struct {
	OnPassStart func(context.Context, *PassEvent)
	OnPassDone  func(context.Context, *PassEvent)
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
}

// Combine returns hooks that call every given set in order.
func Combine(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPassStart: func(ctx context.Context, e *PassEvent) {
			for _, h := range hooks {
				if h.OnPassStart != nil {
					h.OnPassStart(ctx, e)
				}
			}
		},
		OnPassDone: func(ctx context.Context, e *PassEvent) {
			for _, h := range hooks {
				if h.OnPassDone != nil {
					h.OnPassDone(ctx, e)
				}
			}
		},
		OnNodeEnter: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeEnter != nil {
					h.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeLeave != nil {
					h.OnNodeLeave(ctx, e)
				}
			}
		},
	}
}

// PassStart fires OnPassStart if set.
func (h LifecycleHooks) PassStart(ctx context.Context, e *PassEvent) {
	if h.OnPassStart != nil {
		e.Type = EventPassStart
		h.OnPassStart(ctx, e)
	}
}

// PassDone fires OnPassDone if set.
func (h LifecycleHooks) PassDone(ctx context.Context, e *PassEvent) {
	if h.OnPassDone != nil {
		e.Type = EventPassDone
		h.OnPassDone(ctx, e)
	}
}

// NodeEnter fires OnNodeEnter if set.
func (h LifecycleHooks) NodeEnter(ctx context.Context, e *NodeEvent) {
	if h.OnNodeEnter != nil {
		e.Type = EventNodeEnter
		h.OnNodeEnter(ctx, e)
	}
}

// NodeLeave fires OnNodeLeave if set.
func (h LifecycleHooks) NodeLeave(ctx context.Context, e *NodeEvent) {
	if h.OnNodeLeave != nil {
		e.Type = EventNodeLeave
		h.OnNodeLeave(ctx, e)
	}
}
