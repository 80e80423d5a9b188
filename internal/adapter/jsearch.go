package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

const jsearchDefaultBaseURL = "https://jsearch.p.rapidapi.com/search"

// jsearchJob is a single raw job object in the JSearch response.
type jsearchJob struct {
	JobID       string `json:"job_id"`
	Title       string `json:"job_title"`
	Employer    string `json:"employer_name"`
	City        string `json:"job_city"`
	State       string `json:"job_state"`
	Country     string `json:"job_country"`
	ApplyLink   string `json:"job_apply_link"`
	GoogleLink  string `json:"job_google_link"`
	PostedAtUTC string `json:"job_posted_at_datetime_utc"`
}

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// JSearchAdapter fetches postings from the JSearch aggregator on RapidAPI.
// It runs a small fixed page budget per configured query to respect the
// request quota, so pagination here is per-query rather than until-exhausted.
type JSearchAdapter struct {
	baseURL       string
	apiKey        string
	queries       []string
	pagesPerQuery int
	maxAge        time.Duration // zero disables the age check
	filter        model.TitleFilter
	client        *http.Client
	limiter       *ratelimit.HostLimiter
	logger        *slog.Logger
}

// NewJSearchAdapter creates the search-API adapter. maxAgeDays caps how old a
// dated posting may be; postings without a timestamp always pass.
func NewJSearchAdapter(apiKey string, queries []string, pagesPerQuery, maxAgeDays int, f model.TitleFilter, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *JSearchAdapter {
	if pagesPerQuery < 1 {
		pagesPerQuery = 1
	}
	return &JSearchAdapter{
		baseURL:       jsearchDefaultBaseURL,
		apiKey:        apiKey,
		queries:       queries,
		pagesPerQuery: pagesPerQuery,
		maxAge:        time.Duration(maxAgeDays) * 24 * time.Hour,
		filter:        f,
		client:        client,
		limiter:       limiter,
		logger:        logger,
	}
}

func (a *JSearchAdapter) Name() string { return "jsearch" }

// FetchPostings runs every configured query, normalizing and filtering
// inline. A failed query aborts only its own remaining pages and keeps the
// pages it already produced; the adapter reports an error only when every
// query failed.
func (a *JSearchAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if a.apiKey == "" {
		a.logger.Warn("jsearch api key not set, skipping search-api source")
		return nil, nil
	}

	var postings []model.Posting
	seen := make(map[string]bool) // queries overlap; dedup within the run
	failed := 0

	for _, query := range a.queries {
		if ctx.Err() != nil {
			return postings, ctx.Err()
		}

		results, err := a.fetchQuery(ctx, query)
		if err != nil {
			failed++
			a.logger.Warn("jsearch query failed", "query", query, "error", err)
			// fall through: keep the pages the query fetched before failing
		}

		for _, p := range results {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			postings = append(postings, p)
		}
	}

	if failed == len(a.queries) && len(a.queries) > 0 {
		return postings, fmt.Errorf("all %d jsearch queries failed", failed)
	}
	return postings, nil
}

// fetchQuery pages through one query until the page budget is spent or an
// empty page signals no more results.
func (a *JSearchAdapter) fetchQuery(ctx context.Context, query string) ([]model.Posting, error) {
	var out []model.Posting

	for page := 1; page <= a.pagesPerQuery; page++ {
		if err := a.limiter.WaitURL(ctx, a.baseURL); err != nil {
			return out, err
		}

		var resp jsearchResponse
		err := doJSONRetry429(ctx, a.client, func() (*http.Request, error) {
			return a.newPageRequest(ctx, query, page)
		}, &resp)
		if err != nil {
			return out, err
		}

		if len(resp.Data) == 0 {
			break
		}

		for _, raw := range resp.Data {
			p, err := a.normalize(raw)
			if err != nil {
				a.logger.Debug("dropping malformed jsearch record", "query", query, "error", err)
				continue
			}
			if !a.isRecent(p.PostedAt) {
				continue
			}
			if !a.filter.Match(p.Title) {
				continue
			}
			out = append(out, p)
		}
	}

	return out, nil
}

func (a *JSearchAdapter) newPageRequest(ctx context.Context, query string, page int) (*http.Request, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")
	params.Set("date_posted", "today")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", a.apiKey)
	req.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")
	return req, nil
}

// normalize maps a raw JSearch record to the canonical posting. The upstream
// job_id is globally unique on their side, so the source-qualified key is
// simply "jsearch-<job_id>".
func (a *JSearchAdapter) normalize(raw jsearchJob) (model.Posting, error) {
	if raw.JobID == "" {
		return model.Posting{}, fmt.Errorf("%w: missing job_id", model.ErrMalformedRecord)
	}
	if raw.Title == "" {
		return model.Posting{}, fmt.Errorf("%w: missing job_title", model.ErrMalformedRecord)
	}

	link := raw.ApplyLink
	if link == "" {
		link = raw.GoogleLink
	}

	company := raw.Employer
	if company == "" {
		company = "Unknown Company"
	}

	return model.Posting{
		ID:       model.PostingID("jsearch", raw.JobID),
		Title:    raw.Title,
		Company:  company,
		Location: joinLocation(raw.City, raw.State, raw.Country),
		URL:      link,
		Source:   model.SourceSearchAPI,
		PostedAt: parseTimestamp(raw.PostedAtUTC),
	}, nil
}

// isRecent applies the max-age cutoff. Unknown age is treated as recent.
func (a *JSearchAdapter) isRecent(postedAt *time.Time) bool {
	if a.maxAge == 0 || postedAt == nil {
		return true
	}
	return postedAt.After(time.Now().UTC().Add(-a.maxAge))
}

func joinLocation(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
