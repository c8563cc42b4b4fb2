package store

import (
	"context"
	"time"
)

// AuditEntry is one journaled hub event. Message bodies are never stored.
type AuditEntry struct {
	ID         string
	ConnKey    string
	Event      string // broadcast kind: connected, disconnected, okay, names, error
	Command    string // command kind, empty for connect/disconnect
	Actor      string // nickname of the issuer when the event happened
	Channel    string
	Target     string // invite/kick target or the new nickname of a rename
	Code       string // error code, empty on success
	Recipients int
	CreatedAt  time.Time
}

// AuditFilter narrows ListEntries.
type AuditFilter struct {
	// Channel restricts results to one channel when non-empty.
	Channel string
	// Actor restricts results to one nickname when non-empty.
	Actor string
	// Limit caps the number of entries; values <= 0 mean DefaultAuditLimit.
	Limit int
}

// DefaultAuditLimit is used when a filter does not set Limit.
const DefaultAuditLimit = 100

// AuditStore handles audit journal persistence.
type AuditStore interface {
	// SaveEntries persists entries in one transaction.
	SaveEntries(ctx context.Context, entries []*AuditEntry) error

	// ListEntries returns the newest matching entries in chronological order.
	ListEntries(ctx context.Context, filter AuditFilter) ([]*AuditEntry, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	AuditStore

	// Close closes the underlying database connection.
	Close() error
}
