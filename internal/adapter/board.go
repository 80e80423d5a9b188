package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

// BoardFeedSpec points at one sports-industry job board's RSS/Atom feed.
type BoardFeedSpec struct {
	Name    string // display name, used as the company fallback
	Slug    string // identity prefix
	FeedURL string
}

// BoardFeedAdapter pulls postings from an RSS/Atom job-board feed. Boards
// publish finite feeds, so a run is one fetch; there is nothing to paginate.
type BoardFeedAdapter struct {
	spec    BoardFeedSpec
	filter  model.TitleFilter
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
}

func NewBoardFeedAdapter(spec BoardFeedSpec, f model.TitleFilter, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *BoardFeedAdapter {
	return &BoardFeedAdapter{
		spec:    spec,
		filter:  f,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (a *BoardFeedAdapter) Name() string { return "board/" + a.spec.Slug }

func (a *BoardFeedAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if err := a.limiter.WaitURL(ctx, a.spec.FeedURL); err != nil {
		return nil, err
	}

	resp, err := doGetRetry429(ctx, a.client, a.spec.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("board feed fetch for %s: %w", a.spec.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("board feed fetch for %s", a.spec.Name),
		}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("board feed parse for %s: %w", a.spec.Name, err)
	}

	var postings []model.Posting
	seen := make(map[string]bool)

	for _, item := range feed.Items {
		p, err := a.normalize(item)
		if err != nil {
			a.logger.Debug("dropping malformed feed item", "board", a.spec.Name, "error", err)
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

	return postings, nil
}

// normalize maps a feed item to the canonical posting. The GUID is the
// board's own stable identifier; the link is the fallback when a board omits
// GUIDs.
func (a *BoardFeedAdapter) normalize(item *gofeed.Item) (model.Posting, error) {
	title := extractText(item.Title)
	if title == "" {
		return model.Posting{}, fmt.Errorf("%w: empty item title", model.ErrMalformedRecord)
	}

	native := item.GUID
	if native == "" {
		native = item.Link
	}
	if native == "" {
		return model.Posting{}, fmt.Errorf("%w: item without guid or link", model.ErrMalformedRecord)
	}

	company := a.spec.Name
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		company = strings.TrimSpace(item.Author.Name)
	}

	return model.Posting{
		ID:       model.PostingID("board", a.spec.Slug, native),
		Title:    title,
		Company:  company,
		URL:      strings.TrimSpace(item.Link),
		Source:   model.SourceSportsBoard,
		PostedAt: item.PublishedParsed,
	}, nil
}
