package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const boardFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Sports Careers Board</title>
	<item>
		<title>Marketing Coordinator &amp; Events</title>
		<link>https://board.example.com/jobs/1</link>
		<guid>job-guid-1</guid>
		<author>acme@example.com (Acme Athletics)</author>
		<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
	</item>
	<item>
		<title>Footwear Intern</title>
		<link>https://board.example.com/jobs/2</link>
	</item>
	<item>
		<title>Duplicate Entry</title>
		<guid>job-guid-1</guid>
	</item>
	<item>
		<title></title>
		<guid>job-guid-3</guid>
	</item>
</channel>
</rss>`

func newTestBoardAdapter(t *testing.T, handler http.HandlerFunc) *BoardFeedAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	spec := BoardFeedSpec{Name: "Sports Careers Board", Slug: "sportsboard", FeedURL: server.URL + "/feed.rss"}
	return NewBoardFeedAdapter(spec, matchAll{}, testClient(), testLimiter(), testLogger())
}

func TestBoardFeedFetchPostings(t *testing.T) {
	a := newTestBoardAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, boardFeed)
	})

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	// Titleless item dropped, repeated guid deduped.
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}

	first := postings[0]
	if first.ID != "board-sportsboard-job-guid-1" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Company != "Acme Athletics" {
		t.Errorf("Company = %q, want item author name", first.Company)
	}
	if first.PostedAt == nil {
		t.Error("expected parsed pubDate")
	}

	// Items without a guid key on their link; company falls back to the board.
	second := postings[1]
	if second.ID != "board-sportsboard-https://board.example.com/jobs/2" {
		t.Errorf("fallback ID = %q", second.ID)
	}
	if second.Company != "Sports Careers Board" {
		t.Errorf("fallback Company = %q", second.Company)
	}
}

func TestBoardFeedHTTPErrorPropagates(t *testing.T) {
	a := newTestBoardAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	if _, err := a.FetchPostings(context.Background()); err == nil {
		t.Error("expected error for an unavailable feed")
	}
}

func TestBoardFeedRetriesOnceOn429(t *testing.T) {
	var calls atomic.Int64
	a := newTestBoardAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, boardFeed)
	})

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings after 429 retry: %v", err)
	}
	if len(postings) == 0 {
		t.Error("expected postings from the retried feed")
	}
	if calls.Load() != 2 {
		t.Errorf("got %d requests, want 2 (original + one retry)", calls.Load())
	}
}

func TestBoardFeedParseErrorPropagates(t *testing.T) {
	a := newTestBoardAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	})

	if _, err := a.FetchPostings(context.Background()); err == nil {
		t.Error("expected parse error for a non-feed body")
	}
}
