package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lacedup/footwork/internal/model"
)

// SQLiteStore is the durable seen-set: every identity that has ever triggered
// a notification, with the metadata we had at first sighting. Rows are never
// updated or deleted. The table is a monotonically growing log, decoupled
// from the catalog (which can shrink).
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dbPath and ensures both the
// seen_jobs and catalog tables exist.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS seen_jobs (
			id         TEXT PRIMARY KEY,
			title      TEXT,
			company    TEXT,
			location   TEXT,
			source     TEXT,
			first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS catalog (
			id         TEXT PRIMARY KEY,
			title      TEXT,
			company    TEXT,
			location   TEXT,
			url        TEXT,
			source     TEXT,
			posted_at  TIMESTAMP,
			first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			applied    INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given identity has already been recorded.
func (s *SQLiteStore) HasSeen(id string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", id, err)
	}
	return true, nil
}

// MarkSeen records a posting's identity as seen. Inserting an already-present
// identity is a no-op, so the call is idempotent.
func (s *SQLiteStore) MarkSeen(p model.Posting) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO seen_jobs (id, title, company, location, source) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Company, p.Location, p.Source,
	)
	if err != nil {
		return fmt.Errorf("marking posting %s as seen: %w", p.ID, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
