package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

// Career-site backends answer browser user agents more reliably than the
// default Go one.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const rateLimitCooldown = 5 * time.Second

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// doJSON executes the request and decodes a JSON body into out. Non-2xx
// statuses come back as *model.HTTPError so callers can classify them.
func doJSON(client *http.Client, req *http.Request, out any) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s %s", req.Method, req.URL.Redacted()),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Redacted(), err)
	}
	return nil
}

// doJSONRetry429 runs doJSON with the rate-limit policy shared by all
// adapters: on a 429, cool down (honoring Retry-After when the server sends
// one) and retry the same page exactly once. Any other failure is returned
// as-is. newReq must build a fresh request each call since bodies are
// single-use.
func doJSONRetry429(ctx context.Context, client *http.Client, newReq func() (*http.Request, error), out any) error {
	req, err := newReq()
	if err != nil {
		return err
	}

	err = doJSON(client, req, out)
	if err == nil || !model.IsRateLimited(err) {
		return err
	}

	cooldown := rateLimitCooldown
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		cooldown = httpErr.RetryAfter
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cooldown):
	}

	req, err = newReq()
	if err != nil {
		return err
	}
	return doJSON(client, req, out)
}

// doGetRetry429 issues a plain GET under the same rate-limit policy: on a
// 429, cool down (honoring Retry-After when present) and retry the same URL
// exactly once. The response is returned whatever its status; callers
// classify status codes themselves and own closing the body.
func doGetRetry429(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	}

	req, err := newReq()
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}

	cooldown := rateLimitCooldown
	if d := parseRetryAfter(resp.Header.Get("Retry-After")); d > 0 {
		cooldown = d
	}
	resp.Body.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(cooldown):
	}

	req, err = newReq()
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}
