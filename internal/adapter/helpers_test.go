package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lacedup/footwork/internal/ratelimit"
)

// matchAll accepts every title; tests that care about filtering use a real
// keyword filter instead.
type matchAll struct{}

func (matchAll) Match(string) bool { return true }

// matchNone rejects every title.
type matchNone struct{}

func (matchNone) Match(string) bool { return false }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testLimiter is generous enough that no test ever blocks on it.
func testLimiter() *ratelimit.HostLimiter {
	return ratelimit.NewHostLimiter(1000, 1000)
}

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}
