package model

import (
	"context"
	"time"
)

// Source tags. Every adapter stamps its postings with exactly one of these.
const (
	SourceSearchAPI   = "search-api"
	SourceCareerSite  = "career-site"
	SourceSportsBoard = "sports-board"
)

// Posting is the unified representation of a job listing from any source.
type Posting struct {
	ID        string     // deterministic, source-qualified dedup key
	Title     string     // job title
	Company   string     // company name
	Location  string     // display location, empty when unknown
	URL       string     // apply/detail link, also used by the liveness probe
	Source    string     // which adapter produced the record
	PostedAt  *time.Time // nil when the upstream gives no timestamp
	FirstSeen time.Time  // our clock, set when the posting enters the catalog
	Applied   bool       // catalog-only flag, toggled by the review screen
}

// Fetcher produces the finished postings of one upstream source for a run.
// Implementations own pagination, normalization, and filtering; what comes
// out is already deduplicated within the run.
type Fetcher interface {
	Name() string
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// SeenStore is the durable membership log of identities already notified.
// MarkSeen must be idempotent: inserting a present identity is a no-op.
type SeenStore interface {
	HasSeen(id string) (bool, error)
	MarkSeen(p Posting) error
}

// Catalog is the durable collection of currently-live postings feeding the
// dashboard. Appended by the pipeline, pruned only by the liveness checker.
type Catalog interface {
	Append(p Posting) error
	All() ([]Posting, error)
	Remove(id string) error
	SetApplied(id string, applied bool) error
}

// Notifier delivers a batch of new postings. Implementations chunk large
// batches themselves; a delivery failure must not abort the run.
type Notifier interface {
	Notify(postings []Posting) error
	Heartbeat(stats RunStats) error
}

// TitleFilter decides whether a posting's title is worth tracking.
type TitleFilter interface {
	Match(title string) bool
}

// RunStats summarizes one pipeline run for logs and the heartbeat.
type RunStats struct {
	Checked       int // postings that reached the dedup check
	New           int // postings notified this run
	SourcesOK     int
	SourcesFailed int
}
