// Package history is an opt-in sqlite audit log of processed queries.
// No conversation state is ever stored; entries record what ran, not
// what was said.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id          TEXT PRIMARY KEY,
	timestamp   DATETIME NOT NULL,
	query       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	language    TEXT NOT NULL DEFAULT '',
	executed    INTEGER NOT NULL DEFAULT 0,
	exit_code   INTEGER NOT NULL DEFAULT 0,
	timed_out   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	working_dir TEXT NOT NULL DEFAULT '',
	provider    TEXT NOT NULL DEFAULT '',
	model       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_queries_timestamp ON queries(timestamp DESC);
`

// Store wraps the sqlite database holding the audit log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add records one processed query. A zero ID or timestamp is filled in.
func (s *Store) Add(entry types.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO queries (id, timestamp, query, kind, language, executed,
			exit_code, timed_out, duration_ms, working_dir, provider, model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, entry.Query, entry.Kind, entry.Language,
		entry.Executed, entry.ExitCode, entry.TimedOut, entry.DurationMs,
		entry.WorkingDir, entry.Provider, entry.Model,
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, timestamp, query, kind, language, executed, exit_code,
			timed_out, duration_ms, working_dir, provider, model
		FROM queries ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search returns entries whose query text contains term, most recent
// first.
func (s *Store) Search(term string, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, timestamp, query, kind, language, executed, exit_code,
			timed_out, duration_ms, working_dir, provider, model
		FROM queries WHERE query LIKE ? ORDER BY timestamp DESC LIMIT ?`,
		"%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Prune drops entries older than the retention window. A zero or
// negative retention keeps everything.
func (s *Store) Prune(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM queries WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM queries`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Query, &e.Kind, &e.Language,
			&e.Executed, &e.ExitCode, &e.TimedOut, &e.DurationMs,
			&e.WorkingDir, &e.Provider, &e.Model); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
