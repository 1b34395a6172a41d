// Package session implements the session lifecycle manager for CalcMCP.
//
// It consists of three cooperating parts:
//
//   - Registry: in-memory mapping from session ID to session record, owning
//     all mutation and lookup
//   - the expiry sweeper: a background goroutine that periodically evicts
//     records idle past the configured timeout
//   - Handler: the lifecycle controller that starts the sweeper, stops it,
//     and releases all sessions on shutdown
//
// The registry lock is the only shared mutable state between the sweeper and
// foreground callers. A touch that completes before a sweep tick begins is
// guaranteed to survive that tick; the per-record eviction re-check under the
// lock makes a racing touch and eviction mutually exclusive.
package session
