// Package app wires the engine together: configuration, logging, the module
// registry, the evaluator with its hooks and metrics, the built-in demo
// scenes and the HTTP surface. It is independent of any entrypoint.
package app
