// Package domain defines the core domain models for CalcMCP.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - SessionRecord: caller-scoped session entity tracked by the registry
//   - Errors: domain-specific error definitions
package domain
