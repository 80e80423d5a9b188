package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

const workdayPageSize = 20

// workdayListingRequest is the POST body for the Workday jobs endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type workdayListing struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
}

type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

// WorkdayAdapter fetches postings from one Workday tenant's career site. All
// Workday-hosted employers share this one type; only {tenant, subdomain,
// career-site name} vary per company.
type WorkdayAdapter struct {
	companyName string
	tenant      string
	subdomain   string // e.g. "nike.wd1"
	careerSite  string // almost always "External"
	maxPostings int
	baseURL     string // derived from subdomain/tenant; overridable in tests
	applyBase   string
	filter      model.TitleFilter
	client      *http.Client
	limiter     *ratelimit.HostLimiter
	logger      *slog.Logger
}

// NewWorkdayAdapter creates an adapter for one Workday tenant. careerSite
// falls back to "External", the name nearly every tenant uses. maxPostings
// caps one run's pagination.
func NewWorkdayAdapter(companyName, tenant, subdomain, careerSite string, maxPostings int, f model.TitleFilter, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *WorkdayAdapter {
	if careerSite == "" {
		careerSite = "External"
	}
	if maxPostings < 1 {
		maxPostings = 200
	}
	return &WorkdayAdapter{
		companyName: companyName,
		tenant:      tenant,
		subdomain:   subdomain,
		careerSite:  careerSite,
		maxPostings: maxPostings,
		baseURL:     fmt.Sprintf("https://%s.myworkdayjobs.com/wday/cxs/%s/%s", subdomain, tenant, careerSite),
		applyBase:   fmt.Sprintf("https://%s.myworkdayjobs.com/en-US/%s", subdomain, careerSite),
		filter:      f,
		client:      client,
		limiter:     limiter,
		logger:      logger,
	}
}

func (a *WorkdayAdapter) Name() string { return "workday/" + a.tenant }

// FetchPostings paginates the tenant's job listing endpoint until an empty or
// short page, or the per-run cap. A 404/422 means the tenant or career-site
// name doesn't exist; that's an empty board, not an error. A transient
// failure mid-pagination returns whatever was already produced along with the
// error.
func (a *WorkdayAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	seen := make(map[string]bool) // tenants can repeat a listing across pages
	offset := 0

	for len(postings) < a.maxPostings {
		resp, err := a.fetchPage(ctx, offset)
		if err != nil {
			if model.IsNotFoundClass(err) {
				a.logger.Info("workday endpoint not found, treating as empty",
					"company", a.companyName, "career_site", a.careerSite)
				return postings, nil
			}
			return postings, fmt.Errorf("workday fetch for %s: %w", a.companyName, err)
		}

		if len(resp.JobPostings) == 0 {
			break
		}

		for _, l := range resp.JobPostings {
			p, err := a.normalize(l)
			if err != nil {
				a.logger.Debug("dropping malformed workday listing", "company", a.companyName, "error", err)
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

		if len(resp.JobPostings) < workdayPageSize {
			break
		}
		offset += workdayPageSize
		if resp.Total > 0 && offset >= resp.Total {
			break
		}
	}

	return postings, nil
}

func (a *WorkdayAdapter) fetchPage(ctx context.Context, offset int) (*workdayListingResponse, error) {
	if err := a.limiter.WaitURL(ctx, a.baseURL); err != nil {
		return nil, err
	}

	body := workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageSize,
		Offset:        offset,
		SearchText:    "",
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var resp workdayListingResponse
	err = doJSONRetry429(ctx, a.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/jobs", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// normalize maps a Workday listing to the canonical posting. The external
// path is stable per requisition, so "workday-<tenant>-<path>" is the key.
func (a *WorkdayAdapter) normalize(l workdayListing) (model.Posting, error) {
	if l.ExternalPath == "" {
		return model.Posting{}, fmt.Errorf("%w: missing externalPath", model.ErrMalformedRecord)
	}
	if l.Title == "" {
		return model.Posting{}, fmt.Errorf("%w: missing title", model.ErrMalformedRecord)
	}

	return model.Posting{
		ID:       model.PostingID("workday", a.tenant, l.ExternalPath),
		Title:    l.Title,
		Company:  a.companyName,
		Location: l.LocationsText,
		URL:      a.applyBase + l.ExternalPath,
		Source:   model.SourceCareerSite,
		PostedAt: parseWorkdayPostedOn(l.PostedOn),
	}, nil
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+) Days? Ago$`)

// parseWorkdayPostedOn converts Workday's relative date string to an
// approximate timestamp. "Posted 30+ Days Ago" and unknown formats map to
// nil, which downstream treats as recent.
func parseWorkdayPostedOn(postedOn string) *time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	matches := daysAgoRegex.FindStringSubmatch(postedOn)
	if matches == nil {
		return nil
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}
	t := today.AddDate(0, 0, -n)
	return &t
}
