// Package evaluator runs a validated graph for a set of external inputs and
// returns the requested output values.
//
// Evaluation is pull-based: only the instances the wanted outputs depend on
// are run, each at most once per pass, in dependency order. A pass either
// returns every wanted value or an error; partial results are never
// returned.
//
// By default instances run one after another in a deterministic order. With
// WithWorkers, a closure made only of pure definitions is spread over a
// worker pool instead.
package evaluator
