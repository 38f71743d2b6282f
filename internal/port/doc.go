// Package port describes the typed connection points of a node: their names,
// their value types and whether data flows into or out of them.
//
// Value types are cty types. Primitive tags map onto cty primitives and
// semantic tags (a world position, a direction) are cty capsule types, which
// compare by identity. Two ports can be wired together only when their types
// are exactly equal; there is no implicit conversion.
package port
