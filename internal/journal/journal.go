// Package journal keeps a local sqlite log of every mutation the editor
// successfully persisted to the server. It is client-side observability
// only: nothing in the consistency protocol reads it back.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded mutation.
type Entry struct {
	ID        int64
	Timestamp string
	Entity    string // message, signal, node, database
	Op        string // create, update, delete, upload, reload, save
	Target    string // hex frame id, signal name or node name
	Detail    string
}

type Manager struct {
	db *sql.DB
}

// NewManager opens (and if needed creates) the journal database.
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	m := &Manager{db: db}
	if err := m.initSchema(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		entity TEXT NOT NULL,
		op TEXT NOT NULL,
		target TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_journal_entity ON journal(entity);
	`

	if _, err := m.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return nil
}

// Record appends one mutation to the journal.
func (m *Manager) Record(entity, op, target, detail string) error {
	timestamp := time.Now().Local().Format("2006-01-02 15:04:05")
	_, err := m.db.Exec(
		`INSERT INTO journal (timestamp, entity, op, target, detail) VALUES (?, ?, ?, ?, ?)`,
		timestamp, entity, op, target, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Load returns up to limit entries, newest first.
func (m *Manager) Load(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := m.db.Query(
		`SELECT id, timestamp, entity, op, target, COALESCE(detail, '')
		 FROM journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Entity, &e.Op, &e.Target, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all journal entries.
func (m *Manager) Clear() error {
	if _, err := m.db.Exec(`DELETE FROM journal`); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}
