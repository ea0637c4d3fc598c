package store

import (
	"context"
	"time"
)

// OutcomeOK is recorded for commands that succeeded.
const OutcomeOK = "ok"

// Entry is one processed command in the audit trail.
type Entry struct {
	ID         int64
	Command    string
	UserID     int64
	Actor      string
	Channel    string
	Target     string
	Outcome    string
	Recipients int
	CreatedAt  time.Time
}

// AuditStore records processed commands and lists them back.
type AuditStore interface {
	RecordCommand(ctx context.Context, e *Entry) error
	// ListEntries returns up to limit entries, newest first.
	ListEntries(ctx context.Context, limit int) ([]*Entry, error)
}

// Store combines all storage interfaces.
type Store interface {
	AuditStore
	Close() error
}
