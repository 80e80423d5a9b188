package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lacedup/footwork/internal/model"
)

// Runner owns one full pipeline run: scrape every source, dedup against the
// seen-store, append new postings to the catalog, notify, heartbeat.
type Runner struct {
	fetchers []model.Fetcher
	store    model.SeenStore
	catalog  model.Catalog
	notifier model.Notifier
	logger   *slog.Logger
}

// NewRunner wires a runner with all its dependencies. catalog may be nil in
// dry-run mode.
func NewRunner(fetchers []model.Fetcher, store model.SeenStore, catalog model.Catalog, notifier model.Notifier, logger *slog.Logger) *Runner {
	return &Runner{
		fetchers: fetchers,
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes one pipeline cycle and returns its stats.
//
// Source isolation: a fetcher error costs only that source's postings; the
// error is logged, never propagated. Store and catalog errors are fatal for
// the run; continuing past a broken seen-store would double-notify.
//
// Each accepted identity is marked seen immediately, source by source, so a
// crash mid-run never re-notifies postings that already went through; the
// sources after the crash point are simply retried wholesale next run.
func (r *Runner) Run(ctx context.Context) (model.RunStats, error) {
	var stats model.RunStats
	var newPostings []model.Posting

	for _, f := range r.fetchers {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		postings, err := f.FetchPostings(ctx)
		if err != nil {
			stats.SourcesFailed++
			r.logger.Error("source failed", "source", f.Name(), "fetched", len(postings), "error", err)
		} else {
			stats.SourcesOK++
		}

		// A partially-failed source still yields what it produced.
		for _, p := range postings {
			stats.Checked++

			seen, err := r.store.HasSeen(p.ID)
			if err != nil {
				return stats, fmt.Errorf("checking seen status: %w", err)
			}
			if seen {
				continue
			}

			if err := r.store.MarkSeen(p); err != nil {
				return stats, fmt.Errorf("marking seen: %w", err)
			}
			newPostings = append(newPostings, p)
			r.logger.Info("new posting",
				"source", p.Source, "title", p.Title, "company", p.Company)
		}

		r.logger.Info("source complete", "source", f.Name(), "fetched", len(postings))
	}

	stats.New = len(newPostings)

	if r.catalog != nil {
		for _, p := range newPostings {
			if err := r.catalog.Append(p); err != nil {
				return stats, fmt.Errorf("appending to catalog: %w", err)
			}
		}
	}

	if len(newPostings) > 0 {
		if err := r.notifier.Notify(newPostings); err != nil {
			// Notification failure is not fatal: the identities are already
			// marked seen, so the run's dedup guarantees hold either way.
			r.logger.Error("notification failed", "count", len(newPostings), "error", err)
		}
	}

	if err := r.notifier.Heartbeat(stats); err != nil {
		r.logger.Warn("heartbeat failed", "error", err)
	}

	// A run where every source failed is still a zero-new success, but it
	// must be tellable apart from a healthy quiet run.
	if stats.SourcesOK == 0 && len(r.fetchers) > 0 {
		r.logger.Warn("run complete, but no source succeeded",
			"sources_failed", stats.SourcesFailed)
	} else {
		r.logger.Info("run complete",
			"checked", stats.Checked,
			"new", stats.New,
			"sources_ok", stats.SourcesOK,
			"sources_failed", stats.SourcesFailed,
		)
	}

	return stats, nil
}
