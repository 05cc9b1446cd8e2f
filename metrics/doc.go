// Package metrics exposes the Prometheus metrics of the ticket tracker,
// along with the metrics/health and pprof servers.
package metrics
