// Package main provides the entry point for calcmcp-server.
//
// The server is the CalcMCP service that provides:
//
//   - An MCP stdio transport exposing the calculator tools
//   - Idle-based session tracking for connected MCP clients
//   - An optional operational HTTP endpoint for health and metrics
//
// Usage:
//
//	calcmcp-server [flags]
//	calcmcp-server --config /path/to/config.yaml
//
// The server loads configuration, initializes infrastructure components,
// starts the session lifecycle manager, and serves MCP over stdio until
// the client disconnects or a termination signal arrives.
package main
