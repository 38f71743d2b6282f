// Package dag is the dependency arena underneath a node graph. Vertices are
// dense integer indexes in declaration order and edges are adjacency lists,
// which keeps traversal order deterministic and avoids pointer cycles.
//
// Cycle detection and ordering both use a three-colour depth-first search.
package dag
