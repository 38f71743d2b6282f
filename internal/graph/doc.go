// Package graph is the builder for typed node graphs.
//
// A Graph owns node instances (a shared definition plus baked-in
// configuration) and the edges between their ports. Every wiring call is
// checked immediately: the instances and ports must exist, the types must be
// exactly equal, and an input can have only one source. A failed call leaves
// the graph untouched.
//
// Whole-graph properties, acyclicity and the absence of unbound inputs, are
// checked by Validate. A successful validation produces an immutable Plan
// that the evaluator works from; the Plan is cached until the graph is
// mutated again.
package graph
