package evaluator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vk/fxgraph/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// runParallel evaluates the closure on a pool of workers. An instance becomes
// ready when the last of its dependencies finishes. On failure the pool stops
// picking up new work and the failure earliest in evaluation order is
// reported.
func (e *Evaluator) runParallel(ctx context.Context, p *pass) error {
	logger := ctxlog.FromContext(ctx)

	position := make(map[int]int, len(p.order))
	for pos, i := range p.order {
		position[i] = pos
	}

	pending := make([]atomic.Int32, p.plan.Len())
	ready := make(chan int, len(p.order))
	for _, i := range p.order {
		n := len(p.plan.Dependencies(i))
		pending[i].Store(int32(n))
		if n == 0 {
			ready <- i
		}
	}

	var remaining atomic.Int32
	remaining.Store(int32(len(p.order)))

	var (
		mu       sync.Mutex
		failed   = -1
		failure  error
		finished = make([]bool, p.plan.Len())
	)

	workers := min(e.workers, len(p.order))
	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		workerID := w
		eg.Go(func() error {
			workerLogger := logger.With("workerID", workerID)
			for {
				select {
				case <-egCtx.Done():
					return nil
				case i, ok := <-ready:
					if !ok {
						return nil
					}
					out, err := e.runNode(egCtx, p, i)
					if err != nil {
						// A node that gave up because the pool is stopping after
						// another node's failure is not a failure of its own.
						if egCtx.Err() != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
							workerLogger.Debug("Worker abandoned node after pool stopped.", "instance", p.plan.Instance(i).ID)
							return nil
						}
						workerLogger.Debug("Worker stopping after node failure.", "instance", p.plan.Instance(i).ID)
						mu.Lock()
						if failed < 0 || position[i] < position[failed] {
							failed, failure = i, err
						}
						mu.Unlock()
						return err
					}

					// Each index is written by exactly one worker, before its
					// dependents are released through the channel.
					p.memo[i] = out
					mu.Lock()
					finished[i] = true
					mu.Unlock()

					for _, d := range p.plan.Dependents(i) {
						if _, inClosure := position[d]; !inClosure {
							continue
						}
						if pending[d].Add(-1) == 0 {
							ready <- d
						}
					}
					if remaining.Add(-1) == 0 {
						close(ready)
					}
				}
			}
		})
	}
	_ = eg.Wait()

	if failed >= 0 {
		// Outputs of instances that never finished must not be reported
		// as discarded.
		for i := range p.memo {
			if !finished[i] {
				p.memo[i] = nil
			}
		}
		return p.failure(failed, failure)
	}
	if remaining.Load() > 0 {
		return ctx.Err()
	}
	return nil
}
