package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lacedup/footwork/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makePostings(n int) []model.Posting {
	postings := make([]model.Posting, n)
	for i := range postings {
		postings[i] = model.Posting{
			ID:      model.PostingID("career-site", string(rune('a'+i))),
			Title:   "Marketing Coordinator",
			Company: "Acme Shoes",
			URL:     "https://example.com/jobs",
			Source:  model.SourceCareerSite,
		}
	}
	return postings
}

func TestNotifyChunksLargeBatches(t *testing.T) {
	var payloads []slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p slackPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())

	// 23 postings at 10 per message → 3 webhook calls.
	if err := n.Notify(makePostings(23)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(payloads) != 3 {
		t.Fatalf("got %d webhook calls, want 3", len(payloads))
	}
}

func TestNotifyEmptyBatchSendsNothing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if calls != 0 {
		t.Errorf("empty batch triggered %d webhook calls", calls)
	}
}

func TestNotifyRetriesOnceOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(makePostings(1)); err != nil {
		t.Fatalf("Notify after 429 retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2 (original + one retry)", calls)
	}
}

func TestNotifyErrorOnlyWhenAllChunksFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(makePostings(5)); err == nil {
		t.Error("expected error when every chunk fails")
	}
}

func TestHeartbeatMentionsAllSourcesFailed(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Heartbeat(model.RunStats{SourcesFailed: 4}); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if !strings.Contains(body, "all 4 sources failed") {
		t.Errorf("heartbeat body %q should call out the total source failure", body)
	}
}
