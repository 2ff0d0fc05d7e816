// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteSchema creates the audit table. Timestamps are stored as RFC 3339
// with nanoseconds so they sort lexically.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   TEXT    NOT NULL,
	event_type  TEXT    NOT NULL,
	session_id  TEXT    NOT NULL,
	success     INTEGER NOT NULL,
	distance    INTEGER NOT NULL DEFAULT 0,
	remaining   INTEGER NOT NULL DEFAULT 0,
	status      TEXT    NOT NULL DEFAULT '',
	lock_trigger TEXT   NOT NULL DEFAULT '',
	fingerprint TEXT    NOT NULL DEFAULT '',
	metadata    TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_session ON audit_events(session_id);
`

// SQLiteSink stores events in a SQLite database.
type SQLiteSink struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteSink opens (or creates) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	_ = os.Chmod(path, 0600)

	return &SQLiteSink{db: db, path: path}, nil
}

// Path returns the database path.
func (s *SQLiteSink) Path() string {
	return s.path
}

// Write inserts event.
func (s *SQLiteSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrSinkClosed
	}

	meta := ""
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		meta = string(data)
	}

	_, err := s.db.Exec(`INSERT INTO audit_events
		(timestamp, event_type, session_id, success, distance, remaining, status, lock_trigger, fingerprint, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.EventType,
		event.SessionID,
		event.Success,
		event.Distance,
		event.Remaining,
		event.Status,
		event.Trigger,
		event.Fingerprint,
		meta,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent events, oldest first.
func (s *SQLiteSink) Recent(n int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrSinkClosed
	}
	if n <= 0 {
		n = -1
	}

	rows, err := s.db.Query(`SELECT timestamp, event_type, session_id, success, distance,
		remaining, status, lock_trigger, fingerprint, metadata
		FROM (SELECT * FROM audit_events ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e    Event
			ts   string
			meta string
		)
		if err := rows.Scan(&ts, &e.EventType, &e.SessionID, &e.Success, &e.Distance,
			&e.Remaining, &e.Status, &e.Trigger, &e.Fingerprint, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("invalid audit timestamp %q: %w", ts, err)
		}
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
				return nil, fmt.Errorf("invalid audit metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountBySession returns how many events a session recorded.
func (s *SQLiteSink) CountBySession(sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrSinkClosed
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM audit_events WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
