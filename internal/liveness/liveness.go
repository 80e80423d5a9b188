package liveness

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

// deadURLSignals are path fragments that career sites redirect expired
// postings to. A final URL containing one of these is a strong hint the
// posting is gone.
var deadURLSignals = []string{
	"/jobs",
	"/careers",
	"/search",
	"?q=",
	"no-longer",
	"expired",
	"not found",
	"job-not-found",
}

// Checker probes posting URLs to decide whether they are still live. The
// heuristic fails open: false negatives (a dead posting kept) are preferred
// over false positives (a live posting removed).
type Checker struct {
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
}

func NewChecker(client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *Checker {
	return &Checker{client: client, limiter: limiter, logger: logger}
}

// IsActive reports whether the URL still appears to be a live posting.
// Policy:
//   - network error or unreachable host → true (never prune on ambiguity)
//   - HTTP 404/410 → false
//   - redirect whose final URL matches a dead-URL signal AND is meaningfully
//     shorter than the original → false (redirect-to-catch-all)
//   - anything else → true
func (c *Checker) IsActive(ctx context.Context, url string) bool {
	if url == "" {
		return true
	}

	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return true
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return false
	}

	// resp.Request.URL is where redirects landed us.
	finalURL := strings.ToLower(resp.Request.URL.String())
	for _, signal := range deadURLSignals {
		if !strings.Contains(finalURL, signal) {
			continue
		}
		// Catch-all pages are far shorter than real posting URLs. A final
		// URL nearly as long as the original is probably still the posting.
		if len(finalURL) < len(url)*8/10 {
			return false
		}
	}

	return true
}

// Prune walks the catalog and removes entries whose URL is confirmed dead.
// Returns how many entries were removed. Probe pacing beyond the shared host
// limiter keeps this polite on big catalogs.
func (c *Checker) Prune(ctx context.Context, catalog model.Catalog) (int, error) {
	postings, err := catalog.All()
	if err != nil {
		return 0, err
	}

	c.logger.Info("checking catalog for expired postings", "entries", len(postings))

	removed := 0
	for i, p := range postings {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}

		if c.IsActive(ctx, p.URL) {
			continue
		}

		if err := catalog.Remove(p.ID); err != nil {
			return removed, err
		}
		removed++
		c.logger.Info("removed expired posting",
			"source", p.Source, "title", p.Title, "company", p.Company)

		if i > 0 && i%10 == 0 {
			select {
			case <-ctx.Done():
				return removed, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}

	c.logger.Info("expiration check complete",
		"active", len(postings)-removed, "removed", removed)
	return removed, nil
}
