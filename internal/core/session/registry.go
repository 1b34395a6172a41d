// Package session implements the session lifecycle manager for CalcMCP.
package session

import (
	"sync"
	"time"

	"github.com/calcmcp/calcmcp-go/internal/core/domain"
)

// Registry is the in-memory mapping from session ID to session record.
//
// The registry owns all records exclusively: callers receive clones, never
// references into the map. All operations are serialized by a single lock at
// the granularity of one operation; the sweeper holds the lock per evicted
// record, not for its whole scan.
//
// The registry does not know about lifecycle states beyond being closed.
// Gating operations on the handler's Running state is the Handler's job; the
// closed flag exists so that no mutation can slip in between the final sweep
// and the registry being drained during Stop.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*domain.SessionRecord
	timeout time.Duration
	closed  bool
}

// NewRegistry creates an empty registry with the given idle timeout.
// The timeout must already be validated by the caller.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		records: make(map[string]*domain.SessionRecord),
		timeout: timeout,
	}
}

// CreateOrTouch creates a record for id, or refreshes an existing one.
//
// A record that is present but already idle past the timeout is replaced by a
// logically new record with a fresh CreatedAt: expired sessions are
// indistinguishable from never-created ones. A non-nil payload replaces the
// stored payload on refresh. Returns a clone of the current record and
// whether a new record was created.
func (r *Registry) CreateOrTouch(id string, payload any, now time.Time) (*domain.SessionRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, domain.ErrNotRunning
	}

	existing, ok := r.records[id]
	if ok && !existing.IdleExpired(now, r.timeout) {
		existing.Touch(now)
		if payload != nil {
			existing.Payload = payload
		}
		return existing.Clone(), false, nil
	}

	record := domain.NewSessionRecord(id, payload, now)
	r.records[id] = record
	return record.Clone(), true, nil
}

// Get returns a clone of the record for id if present and not idle-expired.
// It is read-only: LastActive is not refreshed.
func (r *Registry) Get(id string, now time.Time) (*domain.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, domain.ErrNotRunning
	}

	record, ok := r.records[id]
	if !ok || record.IdleExpired(now, r.timeout) {
		return nil, domain.ErrSessionNotFound
	}
	return record.Clone(), nil
}

// Remove deletes the record for id, reporting whether it existed. Idempotent.
func (r *Registry) Remove(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, domain.ErrNotRunning
	}

	_, ok := r.records[id]
	delete(r.records, id)
	return ok, nil
}

// Size returns the count of currently-registered, non-expired records.
// For observability only.
func (r *Registry) Size(now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, record := range r.records {
		if !record.IdleExpired(now, r.timeout) {
			n++
		}
	}
	return n
}

// SweepOnce evicts all records idle past the timeout as of now and returns
// the eviction count.
//
// The scan snapshots candidate IDs under a read lock, then evicts each one
// under the write lock with a fresh expiry re-check, so a touch linearized
// before the per-record check always wins. A record that cannot be evicted
// (touched or removed concurrently) is skipped; the sweep continues.
func (r *Registry) SweepOnce(now time.Time) int {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return 0
	}
	candidates := make([]string, 0)
	for id, record := range r.records {
		if record.IdleExpired(now, r.timeout) {
			candidates = append(candidates, id)
		}
	}
	r.mu.RUnlock()

	evicted := 0
	for _, id := range candidates {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return evicted
		}
		record, ok := r.records[id]
		if ok && record.IdleExpired(now, r.timeout) {
			delete(r.records, id)
			evicted++
		}
		r.mu.Unlock()
	}
	return evicted
}

// Close marks the registry closed and drops all records, returning the number
// dropped. All subsequent operations fail with ErrNotRunning. Idempotent.
func (r *Registry) Close() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.records)
	r.records = make(map[string]*domain.SessionRecord)
	r.closed = true
	return n
}

// Timeout returns the configured idle timeout.
func (r *Registry) Timeout() time.Duration {
	return r.timeout
}
