package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/port"
	"github.com/vk/fxgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrBoom is what the "test.fail" handler returns.
var ErrBoom = errors.New("boom")

// CountingModule registers number handlers that count their invocations per
// instance:
//
//	test.source  config number -> out
//	test.double  in -> out
//	test.sum     a, b -> out
//	test.label   in -> out (string)
//	test.fail    in -> out, always fails with ErrBoom
type CountingModule struct {
	mu    sync.Mutex
	calls map[string]int
}

// NewCountingModule creates an empty CountingModule.
func NewCountingModule() *CountingModule {
	return &CountingModule{calls: make(map[string]int)}
}

// Calls returns how often instance has been evaluated.
func (m *CountingModule) Calls(instance string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[instance]
}

func (m *CountingModule) hit(instance string) {
	m.mu.Lock()
	m.calls[instance]++
	m.mu.Unlock()
}

func (m *CountingModule) counted(fn node.EvalFunc) node.EvalFunc {
	return func(ctx context.Context, call node.Call) (node.Values, error) {
		m.hit(call.Instance)
		return fn(ctx, call)
	}
}

// Register registers the handlers.
func (m *CountingModule) Register(r *registry.Registry) {
	num := func(name string) port.Descriptor { return port.In(name, cty.Number) }
	out := []port.Descriptor{port.Out("out", cty.Number)}

	r.RegisterHandler("test.source", &registry.Handler{
		Eval: m.counted(func(_ context.Context, c node.Call) (node.Values, error) {
			return node.Values{"out": c.Config}, nil
		}),
		Inputs:  []port.Descriptor{},
		Outputs: out,
	})
	r.RegisterHandler("test.double", &registry.Handler{
		Eval: m.counted(func(_ context.Context, c node.Call) (node.Values, error) {
			return node.Values{"out": c.Inputs["in"].Multiply(cty.NumberIntVal(2))}, nil
		}),
		Inputs:  []port.Descriptor{num("in")},
		Outputs: out,
	})
	r.RegisterHandler("test.sum", &registry.Handler{
		Eval: m.counted(func(_ context.Context, c node.Call) (node.Values, error) {
			return node.Values{"out": c.Inputs["a"].Add(c.Inputs["b"])}, nil
		}),
		Inputs:  []port.Descriptor{num("a"), num("b")},
		Outputs: out,
	})
	r.RegisterHandler("test.label", &registry.Handler{
		Eval: m.counted(func(_ context.Context, c node.Call) (node.Values, error) {
			return node.Values{"out": cty.StringVal(c.Inputs["in"].AsBigFloat().String())}, nil
		}),
		Inputs:  []port.Descriptor{num("in")},
		Outputs: []port.Descriptor{port.Out("out", cty.String)},
	})
	r.RegisterHandler("test.fail", &registry.Handler{
		Eval: m.counted(func(context.Context, node.Call) (node.Values, error) {
			return nil, ErrBoom
		}),
		Inputs:  []port.Descriptor{num("in")},
		Outputs: out,
	})
}

// ExecutionRecord holds the start and end times of one evaluation.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// MockSleeperModule registers "test.sleeper" (in -> out, number passthrough)
// which sleeps and records when each instance ran.
type MockSleeperModule struct {
	mu             sync.Mutex
	executionTimes map[string]ExecutionRecord
	sleepDuration  time.Duration
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		executionTimes: make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// ExecutionTimes returns a copy of the records collected so far.
func (m *MockSleeperModule) ExecutionTimes() map[string]ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]ExecutionRecord, len(m.executionTimes))
	for k, v := range m.executionTimes {
		out[k] = v
	}
	return out
}

// Register registers the sleeper handler.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.RegisterHandler("test.sleeper", &registry.Handler{
		Eval: func(ctx context.Context, c node.Call) (node.Values, error) {
			start := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			m.mu.Lock()
			m.executionTimes[c.Instance] = ExecutionRecord{Start: start, End: time.Now()}
			m.mu.Unlock()
			return node.Values{"out": c.Inputs["in"]}, nil
		},
		Inputs:  []port.Descriptor{port.In("in", cty.Number)},
		Outputs: []port.Descriptor{port.Out("out", cty.Number)},
	})
}

// Manifests for the handlers above, ready to drop into RunIntegrationTest.
const (
	SourceManifest = `
node "source" {
  handler = "test.source"
  pure    = true
  config  = number

  output "out" {
    type = number
  }
}
`
	DoubleManifest = `
node "twice" {
  handler = "test.double"
  pure    = true

  input "in" {
    type = number
  }
  output "out" {
    type = number
  }
}
`
	SumManifest = `
node "sum" {
  handler = "test.sum"
  pure    = true

  input "a" {
    type = number
  }
  input "b" {
    type = number
  }
  output "out" {
    type = number
  }
}
`
	LabelManifest = `
node "label" {
  handler = "test.label"

  input "in" {
    type = number
  }
  output "out" {
    type = string
  }
}
`
	FailManifest = `
node "fail" {
  handler = "test.fail"

  input "in" {
    type = number
  }
  output "out" {
    type = number
  }
}
`
	SleeperManifest = `
node "sleeper" {
  handler = "test.sleeper"
  pure    = true

  input "in" {
    type = number
  }
  output "out" {
    type = number
  }
}
`
)
