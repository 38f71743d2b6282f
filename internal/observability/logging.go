package observability

import (
	"context"

	"github.com/vk/fxgraph/internal/ctxlog"
)

// LogHooks logs pass and node transitions through the context logger.
func LogHooks() LifecycleHooks {
	return LifecycleHooks{
		OnPassStart: func(ctx context.Context, e *PassEvent) {
			ctxlog.FromContext(ctx).Debug("Evaluation pass started.", "wanted", e.Wanted)
		},
		OnPassDone: func(ctx context.Context, e *PassEvent) {
			logger := ctxlog.FromContext(ctx)
			if e.Err != nil {
				logger.Warn("Evaluation pass failed.", "instances", e.Instances, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.Debug("Evaluation pass finished.", "instances", e.Instances, "duration", e.Duration)
		},
		OnNodeLeave: func(ctx context.Context, e *NodeEvent) {
			logger := ctxlog.FromContext(ctx).With("instance", e.Instance, "definition", e.Definition)
			if e.Err != nil {
				logger.Error("Node evaluation failed.", "error", e.Err)
				return
			}
			logger.Debug("Node evaluated.", "duration", e.Duration)
		},
	}
}
