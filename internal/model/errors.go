package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRecord marks an upstream record missing required fields.
// Adapters drop such records and continue; nothing downstream sees them.
var ErrMalformedRecord = errors.New("malformed upstream record")

// HTTPError wraps an HTTP status code so adapter retry policy can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is an HTTP 429 response.
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 429
}

// IsNotFoundClass reports whether err is a 404/410/422 response, the
// "no such endpoint" class that employer adapters treat as an empty board.
func IsNotFoundClass(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case 404, 410, 422:
		return true
	}
	return false
}
