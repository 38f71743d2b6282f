package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/fxgraph/internal/ctxlog"
	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/node"
	"github.com/vk/fxgraph/internal/observability"
	"github.com/vk/fxgraph/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Evaluator evaluates graphs. The zero configuration, returned by New with no
// options, evaluates sequentially without hooks. An Evaluator holds no
// per-pass state and may be shared between goroutines.
type Evaluator struct {
	hooks   observability.LifecycleHooks
	workers int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithHooks installs lifecycle hooks.
func WithHooks(h observability.LifecycleHooks) Option {
	return func(e *Evaluator) { e.hooks = h }
}

// WithWorkers sets the size of the worker pool used for closures made only
// of pure definitions. Values below 2 keep evaluation sequential.
func WithWorkers(n int) Option {
	return func(e *Evaluator) { e.workers = n }
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs g with the default Evaluator.
func Evaluate(ctx context.Context, g *graph.Graph, externals map[string]cty.Value, wanted ...port.Ref) (Result, error) {
	return New().Evaluate(ctx, g, externals, wanted...)
}

// pass is the state of one evaluation.
type pass struct {
	plan      *graph.Plan
	externals map[string]cty.Value
	order     []int
	// memo holds the outputs of each instance evaluated in this pass,
	// indexed by plan index.
	memo []node.Values
}

// Evaluate computes the wanted outputs of g. An empty wanted list means every
// output of every instance. The graph is validated first if it changed since
// its last validation.
func (e *Evaluator) Evaluate(ctx context.Context, g *graph.Graph, externals map[string]cty.Value, wanted ...port.Ref) (Result, error) {
	start := time.Now()
	ev := &observability.PassEvent{EventBase: observability.EventBase{Timestamp: start}}
	for _, w := range wanted {
		ev.Wanted = append(ev.Wanted, w.String())
	}
	e.hooks.PassStart(ctx, ev)

	res, n, err := e.evaluate(ctx, g, externals, wanted)

	ev.Instances = n
	ev.Duration = time.Since(start)
	ev.Err = err
	e.hooks.PassDone(ctx, ev)
	return res, err
}

func (e *Evaluator) evaluate(ctx context.Context, g *graph.Graph, externals map[string]cty.Value, wanted []port.Ref) (Result, int, error) {
	logger := ctxlog.FromContext(ctx)

	plan, err := g.Plan()
	if err != nil {
		return nil, 0, err
	}

	if len(wanted) == 0 {
		wanted = allOutputs(plan)
	}
	roots := make([]int, 0, len(wanted))
	for _, w := range wanted {
		i, err := resolveWanted(plan, w)
		if err != nil {
			return nil, 0, err
		}
		roots = append(roots, i)
	}

	order, err := plan.Closure(roots)
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("Evaluation order resolved.", "instances", len(order), "wanted", len(wanted))

	p := &pass{
		plan:      plan,
		externals: externals,
		order:     order,
		memo:      make([]node.Values, plan.Len()),
	}
	if err := p.checkExternals(); err != nil {
		return nil, len(order), err
	}

	if e.workers > 1 && len(order) > 1 && p.allPure() {
		logger.Debug("Evaluating closure on worker pool.", "workers", e.workers)
		err = e.runParallel(ctx, p)
	} else {
		err = e.runSequential(ctx, p)
	}
	if err != nil {
		return nil, len(order), err
	}

	res := make(Result, len(wanted))
	for _, w := range wanted {
		i, _ := plan.Lookup(w.Instance)
		res[w] = p.memo[i][w.Port]
	}
	return res, len(order), nil
}

func allOutputs(plan *graph.Plan) []port.Ref {
	var refs []port.Ref
	for i := 0; i < plan.Len(); i++ {
		inst := plan.Instance(i)
		for _, out := range inst.Definition.Outputs {
			refs = append(refs, port.Ref{Instance: inst.ID, Port: out.Name})
		}
	}
	return refs
}

func resolveWanted(plan *graph.Plan, w port.Ref) (int, error) {
	i, ok := plan.Lookup(w.Instance)
	if !ok {
		return 0, &graph.UnknownInstanceError{ID: w.Instance}
	}
	def := plan.Instance(i).Definition
	if _, ok := def.Output(w.Port); !ok {
		return 0, &graph.UnknownPortError{Instance: w.Instance, Definition: def.ID, Port: w.Port, Direction: port.Output}
	}
	return i, nil
}

// checkExternals makes sure every external slot read by the closure has a
// usable value before anything is evaluated.
func (p *pass) checkExternals() error {
	for _, i := range p.order {
		inst := p.plan.Instance(i)
		for _, b := range p.plan.Inputs(i) {
			if !b.Source.External() {
				continue
			}
			v, ok := p.externals[b.Source.Slot]
			if !ok || v == cty.NilVal || v.IsNull() {
				return &graph.UnboundInputError{Instance: inst.ID, Port: b.Input.Name, Slot: b.Source.Slot}
			}
			if !v.Type().Equals(b.Input.Type) {
				return &graph.TypeMismatchError{
					From: b.Source,
					To:   port.Ref{Instance: inst.ID, Port: b.Input.Name},
					Have: v.Type(),
					Want: b.Input.Type,
				}
			}
			if !v.IsWhollyKnown() {
				return fmt.Errorf("external slot %q: value must be known", b.Source.Slot)
			}
		}
	}
	return nil
}

func (p *pass) allPure() bool {
	for _, i := range p.order {
		if !p.plan.Instance(i).Definition.Pure {
			return false
		}
	}
	return true
}

func (e *Evaluator) runSequential(ctx context.Context, p *pass) error {
	for _, i := range p.order {
		out, err := e.runNode(ctx, p, i)
		if err != nil {
			return p.failure(i, err)
		}
		p.memo[i] = out
	}
	return nil
}

// failure wraps a node error, listing the outputs this pass computed and is
// about to discard.
func (p *pass) failure(i int, err error) error {
	inst := p.plan.Instance(i)
	var discarded []port.Ref
	values := make(map[port.Ref]cty.Value)
	for _, j := range p.order {
		if j == i || p.memo[j] == nil {
			continue
		}
		for _, out := range p.plan.Instance(j).Definition.Outputs {
			r := port.Ref{Instance: p.plan.Instance(j).ID, Port: out.Name}
			discarded = append(discarded, r)
			values[r] = p.memo[j][out.Name]
		}
	}
	return &graph.EvaluationError{
		Instance:        inst.ID,
		Definition:      inst.Definition.ID,
		Err:             err,
		Discarded:       discarded,
		DiscardedValues: values,
	}
}

// runNode assembles the inputs of instance i, invokes it and checks what it
// returned against its declared outputs.
func (e *Evaluator) runNode(ctx context.Context, p *pass, i int) (node.Values, error) {
	inst := p.plan.Instance(i)
	bindings := p.plan.Inputs(i)

	inputs := make(node.Values, len(bindings))
	for _, b := range bindings {
		if b.Source.External() {
			inputs[b.Input.Name] = p.externals[b.Source.Slot]
			continue
		}
		inputs[b.Input.Name] = p.memo[b.Upstream][b.Source.Port.Port]
	}

	ev := &observability.NodeEvent{
		EventBase:  observability.EventBase{Timestamp: time.Now()},
		Instance:   inst.ID,
		Definition: inst.Definition.ID,
	}
	e.hooks.NodeEnter(ctx, ev)

	out, err := invoke(ctx, inst, inputs)
	if err == nil {
		out, err = checkOutputs(inst.Definition, out)
	}

	ev.Duration = time.Since(ev.Timestamp)
	ev.Err = err
	e.hooks.NodeLeave(ctx, ev)
	return out, err
}

func invoke(ctx context.Context, inst *graph.Instance, inputs node.Values) (out node.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", graph.ErrNodePanic, r)
		}
	}()
	return inst.Definition.Eval(ctx, node.Call{Instance: inst.ID, Config: inst.Config, Inputs: inputs})
}

// checkOutputs enforces that a node returned exactly its declared outputs,
// each with the declared type. The returned map is owned by the pass.
func checkOutputs(def *node.Definition, out node.Values) (node.Values, error) {
	checked := make(node.Values, len(def.Outputs))
	for _, decl := range def.Outputs {
		v, ok := out[decl.Name]
		if !ok || v == cty.NilVal {
			return nil, fmt.Errorf("%w: missing output %q", graph.ErrOutputContract, decl.Name)
		}
		if !v.Type().Equals(decl.Type) {
			return nil, fmt.Errorf("%w: output %q is %s, declared %s",
				graph.ErrOutputContract, decl.Name, port.TypeName(v.Type()), port.TypeName(decl.Type))
		}
		if !v.IsWhollyKnown() {
			return nil, fmt.Errorf("%w: output %q is not known", graph.ErrOutputContract, decl.Name)
		}
		checked[decl.Name] = v
	}
	if len(out) != len(checked) {
		for name := range out {
			if _, ok := def.Output(name); !ok {
				return nil, fmt.Errorf("%w: undeclared output %q", graph.ErrOutputContract, name)
			}
		}
	}
	return checked, nil
}
