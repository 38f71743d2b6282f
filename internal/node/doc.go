// Package node defines the contract every computation node implements: a
// definition with typed input and output ports, optional baked-in
// configuration and an evaluation function.
//
// A Definition is created once, usually by a module at registration time,
// and then shared read-only by every graph instance that uses it.
package node
