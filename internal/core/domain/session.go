// Package domain defines the core domain models for CalcMCP.
package domain

import (
	"crypto/rand"
	"strings"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
)

// Session constraints.
const (
	// MaxSessionIDLength bounds caller-supplied session identifiers.
	MaxSessionIDLength = 128

	// SessionIDPrefix is the prefix for generated session IDs.
	// Format: cmss-{ulid_lowercase}, 31 characters total.
	SessionIDPrefix = "cmss-"
)

// SessionRecord is a caller-scoped unit of state identified by an opaque ID,
// alive while recently active. Records are owned exclusively by the session
// registry; callers only ever see copies.
type SessionRecord struct {
	// ID is the opaque unique identifier, caller-supplied or generated at
	// creation. Stable for the record's lifetime.
	ID string `json:"id"`

	// CreatedAt is the creation timestamp (Unix milliseconds). Set once.
	CreatedAt int64 `json:"created_at"`

	// LastActive is the last activity timestamp (Unix milliseconds).
	// Monotonically non-decreasing.
	LastActive int64 `json:"last_active"`

	// Payload is arbitrary associated data. Opaque to the registry: never
	// inspected or mutated by the sweeper.
	Payload any `json:"-"`
}

// NewSessionRecord creates a record for the given ID with both timestamps
// set to now.
func NewSessionRecord(id string, payload any, now time.Time) *SessionRecord {
	millis := now.UnixMilli()
	return &SessionRecord{
		ID:         id,
		CreatedAt:  millis,
		LastActive: millis,
		Payload:    payload,
	}
}

// Touch updates LastActive to now. LastActive never moves backwards even
// against a skewed clock reading.
func (r *SessionRecord) Touch(now time.Time) {
	if millis := now.UnixMilli(); millis > r.LastActive {
		r.LastActive = millis
	}
}

// IdleExpired reports whether the record has been idle for at least timeout
// as of now.
func (r *SessionRecord) IdleExpired(now time.Time, timeout time.Duration) bool {
	return now.UnixMilli()-r.LastActive >= timeout.Milliseconds()
}

// Clone returns a copy of the record. The payload is shared; it is opaque to
// the registry and owned by the caller that supplied it.
func (r *SessionRecord) Clone() *SessionRecord {
	clone := *r
	return &clone
}

// CreatedAtTime returns CreatedAt as time.Time.
func (r *SessionRecord) CreatedAtTime() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// LastActiveTime returns LastActive as time.Time.
func (r *SessionRecord) LastActiveTime() time.Time {
	return time.UnixMilli(r.LastActive)
}

// GenerateSessionID generates a new session ID using ULID.
// Format: cmss-{ulid_lowercase}, 31 characters total.
func GenerateSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateSessionID checks that an ID is well-formed: non-empty, within the
// length bound, printable, and free of whitespace. IDs are otherwise opaque;
// callers may supply their own identifiers (MCP client session IDs included).
func ValidateSessionID(id string) error {
	if id == "" {
		return ErrInvalidArgument.WithDetails("session id is empty")
	}
	if len(id) > MaxSessionIDLength {
		return ErrInvalidArgument.WithDetails("session id exceeds 128 characters")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return ErrInvalidArgument.WithDetails("session id contains whitespace or non-printable characters")
		}
	}
	return nil
}
