package liveness

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/ratelimit"
)

func newTestChecker(client *http.Client) *Checker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewChecker(client, ratelimit.NewHostLimiter(1000, 1000), logger)
}

func TestIsActiveOKResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestChecker(srv.Client())
	if !c.IsActive(context.Background(), srv.URL+"/postings/footwear-design-intern-12345") {
		t.Error("expected 200 response to be active")
	}
}

func TestIsActiveNotFoundIsDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestChecker(srv.Client())
	if c.IsActive(context.Background(), srv.URL+"/postings/gone") {
		t.Error("expected 404 response to be inactive")
	}
}

func TestIsActiveFailOpenOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	c := newTestChecker(client)
	if !c.IsActive(context.Background(), srv.URL+"/postings/slow") {
		t.Error("expected network timeout to fail open (active)")
	}
}

func TestIsActiveFailOpenOnUnreachableHost(t *testing.T) {
	client := &http.Client{Timeout: 100 * time.Millisecond}
	c := newTestChecker(client)
	if !c.IsActive(context.Background(), "http://127.0.0.1:1/postings/nowhere") {
		t.Error("expected connection failure to fail open (active)")
	}
}

func TestIsActiveRedirectToCatchAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/careers", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestChecker(srv.Client())

	// Long original URL redirected to the short generic /careers page: dead.
	longURL := srv.URL + "/postings/senior-footwear-design-coordinator-portland-12345"
	if c.IsActive(context.Background(), longURL) {
		t.Error("expected redirect to a much shorter catch-all page to be inactive")
	}
}

func TestIsActiveRedirectSimilarLengthStaysActive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/careers/role-x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/careers/role-x", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestChecker(srv.Client())

	// Final URL matches a dead signal ("/careers") but is nearly as long as
	// the original, so the heuristic keeps it.
	if !c.IsActive(context.Background(), srv.URL+"/jobs/role-x") {
		t.Error("expected similar-length redirect to stay active")
	}
}

// memCatalog is a map-backed catalog for prune tests.
type memCatalog struct {
	postings []model.Posting
}

func (m *memCatalog) Append(p model.Posting) error {
	m.postings = append(m.postings, p)
	return nil
}

func (m *memCatalog) All() ([]model.Posting, error) {
	out := make([]model.Posting, len(m.postings))
	copy(out, m.postings)
	return out, nil
}

func (m *memCatalog) Remove(id string) error {
	kept := m.postings[:0]
	for _, p := range m.postings {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.postings = kept
	return nil
}

func (m *memCatalog) SetApplied(id string, applied bool) error { return nil }

func TestPruneRemovesOnlyDeadEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/live/posting-one-that-is-still-up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat := &memCatalog{}
	cat.Append(model.Posting{ID: "live", URL: srv.URL + "/live/posting-one-that-is-still-up"})
	cat.Append(model.Posting{ID: "dead", URL: srv.URL + "/dead/this-posting-is-gone"})

	c := newTestChecker(srv.Client())
	removed, err := c.Prune(context.Background(), cat)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	remaining, _ := cat.All()
	if len(remaining) != 1 || remaining[0].ID != "live" {
		t.Errorf("unexpected catalog after prune: %+v", remaining)
	}
}
