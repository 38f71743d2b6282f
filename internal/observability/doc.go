// Package observability exposes evaluation lifecycle hooks and a Prometheus
// collector built on them.
package observability
