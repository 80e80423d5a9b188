package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

// HTMLPageSpec describes an employer career page that only exists as
// server-rendered HTML: a listing page of repeated job "cards", each with a
// title, a link, and usually a location.
type HTMLPageSpec struct {
	Company string
	Slug    string // identity prefix
	URL     string

	CardSelector     string // one match per job card
	TitleSelector    string // within the card
	LinkSelector     string // within the card; href attribute holds the link
	LocationSelector string // within the card, optional
}

// HTMLPageAdapter scrapes postings out of a structural HTML listing page.
type HTMLPageAdapter struct {
	spec    HTMLPageSpec
	filter  model.TitleFilter
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
}

func NewHTMLPageAdapter(spec HTMLPageSpec, f model.TitleFilter, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *HTMLPageAdapter {
	return &HTMLPageAdapter{
		spec:    spec,
		filter:  f,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (a *HTMLPageAdapter) Name() string { return "html/" + a.spec.Slug }

// FetchPostings fetches the listing page once and parses its cards. Career
// pages of this kind are not paginated server-side, so the page is the run.
func (a *HTMLPageAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if err := a.limiter.WaitURL(ctx, a.spec.URL); err != nil {
		return nil, err
	}

	resp, err := doGetRetry429(ctx, a.client, a.spec.URL)
	if err != nil {
		return nil, fmt.Errorf("html fetch for %s: %w", a.spec.Company, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		a.logger.Info("career page not found, treating as empty", "company", a.spec.Company)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("html fetch for %s", a.spec.Company),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("html parse for %s: %w", a.spec.Company, err)
	}

	base, err := url.Parse(a.spec.URL)
	if err != nil {
		return nil, fmt.Errorf("html base url for %s: %w", a.spec.Company, err)
	}

	var postings []model.Posting
	seen := make(map[string]bool)

	doc.Find(a.spec.CardSelector).Each(func(_ int, card *goquery.Selection) {
		p, err := a.normalizeCard(card, base)
		if err != nil {
			a.logger.Debug("dropping malformed job card", "company", a.spec.Company, "error", err)
			return
		}
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		if !a.filter.Match(p.Title) {
			return
		}
		postings = append(postings, p)
	})

	return postings, nil
}

// normalizeCard extracts one posting from a card element. The link's path is
// the only stable upstream identifier an HTML page gives us, so it becomes
// the source-native part of the key.
func (a *HTMLPageAdapter) normalizeCard(card *goquery.Selection, base *url.URL) (model.Posting, error) {
	title := extractText(card.Find(a.spec.TitleSelector).First().Text())
	if title == "" {
		return model.Posting{}, fmt.Errorf("%w: empty title", model.ErrMalformedRecord)
	}

	href, ok := card.Find(a.spec.LinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return model.Posting{}, fmt.Errorf("%w: card without link", model.ErrMalformedRecord)
	}
	link, err := base.Parse(strings.TrimSpace(href))
	if err != nil {
		return model.Posting{}, fmt.Errorf("%w: bad link %q", model.ErrMalformedRecord, href)
	}

	var location string
	if a.spec.LocationSelector != "" {
		location = extractText(card.Find(a.spec.LocationSelector).First().Text())
	}

	return model.Posting{
		ID:       model.PostingID(a.spec.Slug, link.Path),
		Title:    title,
		Company:  a.spec.Company,
		Location: location,
		URL:      link.String(),
		Source:   model.SourceCareerSite,
	}, nil
}
