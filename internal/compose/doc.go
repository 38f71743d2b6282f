// Package compose proposes node chains from port types alone and assembles
// them into graphs.
//
// A chain is an ordering of definitions in which every input can be fed by
// an output produced earlier in the chain. Generate searches for chains
// breadth-first over multisets of available value types; Assemble turns a
// chain into a wired graph.Graph.
package compose
