// Package shutdown provides graceful shutdown for CalcMCP.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic triggering (e.g. the stdio transport reaching EOF)
//   - Timeout-based forced shutdown
//   - Cleanup callback registration, executed in reverse order
package shutdown
