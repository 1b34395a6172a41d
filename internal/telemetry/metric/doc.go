// Package metric provides Prometheus metrics for CalcMCP.
//
// Metrics include:
//
//   - session registry gauges and lifecycle counters
//   - sweep duration histograms and failure counters
//   - per-tool invocation counters
//
// Metrics are exposed at /metrics on the ops HTTP server.
package metric
