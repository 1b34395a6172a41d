// Package opsserver provides the operational HTTP endpoint for CalcMCP.
//
// The MCP transport itself runs over stdio; this server exists for the
// surrounding infrastructure and exposes:
//
//   - GET /healthz: liveness plus build info and active session count
//   - GET /metrics: Prometheus exposition
//
// It uses the Go standard library net/http for implementation.
package opsserver
