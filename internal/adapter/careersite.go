package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

// CareerSiteSpec describes one employer's custom JSON career API. Employers
// that roll their own job endpoints (instead of a hosted ATS) vary only in
// the URL shape and the names of the response fields, so one adapter type
// covers all of them.
type CareerSiteSpec struct {
	Company string // display name
	Slug    string // identity prefix, e.g. "nike"

	// Endpoint may contain a "{page}" placeholder; without one the adapter
	// fetches a single page.
	Endpoint string
	MaxPages int // page budget when {page} is present, default 5

	// Response field mapping.
	ListFields []string // candidate keys holding the job array, tried in order
	IDField    string
	TitleField string
	LocField   string
	URLField   string // value may be absolute or relative to Endpoint's origin
	DateField  string

	// URLTemplate builds the apply link when the response carries no usable
	// URL field. "{id}" is replaced with the record's ID.
	URLTemplate string
}

// CareerSiteAdapter fetches postings from one employer's custom JSON career
// API, driven entirely by a CareerSiteSpec.
type CareerSiteAdapter struct {
	spec    CareerSiteSpec
	filter  model.TitleFilter
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
}

func NewCareerSiteAdapter(spec CareerSiteSpec, f model.TitleFilter, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *CareerSiteAdapter {
	if spec.MaxPages < 1 {
		spec.MaxPages = 5
	}
	if len(spec.ListFields) == 0 {
		spec.ListFields = []string{"jobs", "data"}
	}
	return &CareerSiteAdapter{
		spec:    spec,
		filter:  f,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (a *CareerSiteAdapter) Name() string { return "careersite/" + a.spec.Slug }

// FetchPostings pages through the employer's endpoint until an empty page or
// the page budget. A 404/422 means the endpoint shape guess was wrong for
// this employer: empty board, not an error.
func (a *CareerSiteAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	paged := strings.Contains(a.spec.Endpoint, "{page}")
	maxPages := a.spec.MaxPages
	if !paged {
		maxPages = 1
	}

	var postings []model.Posting
	seen := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		raw, err := a.fetchPage(ctx, page)
		if err != nil {
			if model.IsNotFoundClass(err) {
				a.logger.Info("career endpoint not found, treating as empty", "company", a.spec.Company)
				return postings, nil
			}
			return postings, fmt.Errorf("career site fetch for %s: %w", a.spec.Company, err)
		}
		if len(raw) == 0 {
			break
		}

		for _, record := range raw {
			p, err := a.normalize(record)
			if err != nil {
				a.logger.Debug("dropping malformed career-site record", "company", a.spec.Company, "error", err)
				continue
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			if !a.filter.Match(p.Title) {
				continue
			}
			postings = append(postings, p)
		}
	}

	return postings, nil
}

func (a *CareerSiteAdapter) fetchPage(ctx context.Context, page int) ([]map[string]any, error) {
	pageURL := strings.ReplaceAll(a.spec.Endpoint, "{page}", strconv.Itoa(page))

	if err := a.limiter.WaitURL(ctx, pageURL); err != nil {
		return nil, err
	}

	var body map[string]any
	err := doJSONRetry429(ctx, a.client, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	}, &body)
	if err != nil {
		return nil, err
	}

	for _, key := range a.spec.ListFields {
		list, ok := body[key].([]any)
		if !ok {
			continue
		}
		records := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if record, ok := item.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records, nil
	}
	return nil, nil
}

// normalize maps one loosely-shaped record through the spec's field mapping.
// The employer slug plus the upstream's own ID form the dedup key.
func (a *CareerSiteAdapter) normalize(record map[string]any) (model.Posting, error) {
	id := stringField(record, a.spec.IDField)
	if id == "" {
		return model.Posting{}, fmt.Errorf("%w: missing %q", model.ErrMalformedRecord, a.spec.IDField)
	}
	title := stringField(record, a.spec.TitleField)
	if title == "" {
		return model.Posting{}, fmt.Errorf("%w: missing %q", model.ErrMalformedRecord, a.spec.TitleField)
	}

	applyURL := stringField(record, a.spec.URLField)
	switch {
	case applyURL == "" && a.spec.URLTemplate != "":
		applyURL = strings.ReplaceAll(a.spec.URLTemplate, "{id}", id)
	case applyURL != "" && strings.HasPrefix(applyURL, "/"):
		applyURL = originOf(a.spec.Endpoint) + applyURL
	}

	return model.Posting{
		ID:       model.PostingID(a.spec.Slug, id),
		Title:    title,
		Company:  a.spec.Company,
		Location: stringField(record, a.spec.LocField),
		URL:      applyURL,
		Source:   model.SourceCareerSite,
		PostedAt: parseTimestamp(stringField(record, a.spec.DateField)),
	}, nil
}

// stringField reads a field that may arrive as a string or a JSON number.
func stringField(record map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := record[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// originOf returns scheme://host of a URL, dropping path and query.
func originOf(raw string) string {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return raw
	}
	rest := raw[idx+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return raw[:idx+3+slash]
	}
	return raw
}
