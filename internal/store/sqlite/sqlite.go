package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/chanserv/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	command    TEXT NOT NULL,
	user_id    INTEGER NOT NULL,
	actor      TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT '',
	target     TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	recipients INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and makes sure the audit schema exists.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ApplySchema creates the audit tables if they are missing.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== AuditStore implementation ====

// RecordCommand appends e to the audit log and fills in its ID.
func (s *SQLiteStore) RecordCommand(ctx context.Context, e *store.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO audit_log (command, user_id, actor, channel, target, outcome, recipients, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		e.Command,
		e.UserID,
		e.Actor,
		e.Channel,
		e.Target,
		e.Outcome,
		e.Recipients,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// ListEntries returns up to limit entries, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, limit int) ([]*store.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, command, user_id, actor, channel, target, outcome, recipients, created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]*store.Entry, 0)
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(
			&e.ID,
			&e.Command,
			&e.UserID,
			&e.Actor,
			&e.Channel,
			&e.Target,
			&e.Outcome,
			&e.Recipients,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return entries, nil
}
