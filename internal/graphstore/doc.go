// Package graphstore provides an in-memory, thread-safe store of built
// graphs keyed by name.
//
// A graph caches its validated plan per version, so serving repeated
// evaluations of a named graph from one stored instance validates it once.
// Graphs are never mutated after being stored; concurrent evaluation of one
// stored graph is safe.
//
// The store uses sync.Map: the key space is small and stable and reads far
// outnumber writes.
package graphstore
