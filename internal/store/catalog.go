package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

// Catalog is the dashboard's view of currently-live postings, stored in the
// same database as the seen-set. The pipeline only appends; rows leave only
// when the liveness checker confirms the URL is dead.
type Catalog struct {
	db *sql.DB
}

// Catalog returns the catalog view over the store's database.
func (s *SQLiteStore) Catalog() *Catalog {
	return &Catalog{db: s.db}
}

// Append inserts a posting into the catalog. Re-appending an identity already
// present is a no-op; catalog rows are never mutated by the pipeline.
func (c *Catalog) Append(p model.Posting) error {
	var postedAt any
	if p.PostedAt != nil {
		postedAt = p.PostedAt.UTC()
	}
	_, err := c.db.Exec(
		"INSERT OR IGNORE INTO catalog (id, title, company, location, url, source, posted_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Company, p.Location, p.URL, p.Source, postedAt,
	)
	if err != nil {
		return fmt.Errorf("appending %s to catalog: %w", p.ID, err)
	}
	return nil
}

// All returns every catalog entry in first-seen order.
func (c *Catalog) All() ([]model.Posting, error) {
	rows, err := c.db.Query(
		"SELECT id, title, company, location, url, source, posted_at, first_seen, applied FROM catalog ORDER BY first_seen, id",
	)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		var postedAt sql.NullTime
		var firstSeen sql.NullTime
		var applied int
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.URL, &p.Source, &postedAt, &firstSeen, &applied); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if postedAt.Valid {
			t := postedAt.Time
			p.PostedAt = &t
		}
		if firstSeen.Valid {
			p.FirstSeen = firstSeen.Time
		} else {
			p.FirstSeen = time.Time{}
		}
		p.Applied = applied != 0
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// Remove deletes a catalog entry. Only the liveness checker calls this.
func (c *Catalog) Remove(id string) error {
	if _, err := c.db.Exec("DELETE FROM catalog WHERE id = ?", id); err != nil {
		return fmt.Errorf("removing %s from catalog: %w", id, err)
	}
	return nil
}

// SetApplied flips the applied flag for one entry.
func (c *Catalog) SetApplied(id string, applied bool) error {
	val := 0
	if applied {
		val = 1
	}
	if _, err := c.db.Exec("UPDATE catalog SET applied = ? WHERE id = ?", val, id); err != nil {
		return fmt.Errorf("updating applied flag for %s: %w", id, err)
	}
	return nil
}
