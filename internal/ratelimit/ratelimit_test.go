package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitFirstRequestImmediate(t *testing.T) {
	hl := NewHostLimiter(1, 1)

	start := time.Now()
	if err := hl.Wait(context.Background(), "example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first request waited %v, want immediate", elapsed)
	}
}

func TestWaitEnforcesDelayPerHost(t *testing.T) {
	hl := NewHostLimiter(10, 1) // 100ms between requests

	ctx := context.Background()
	if err := hl.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	start := time.Now()
	if err := hl.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second request to same host waited only %v", elapsed)
	}

	// A different host has its own bucket and proceeds immediately.
	start = time.Now()
	if err := hl.Wait(ctx, "other.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("request to fresh host waited %v, want immediate", elapsed)
	}
}

func TestWaitURLFallsBackOnBadURL(t *testing.T) {
	hl := NewHostLimiter(100, 1)
	if err := hl.WaitURL(context.Background(), "::not a url::"); err != nil {
		t.Fatalf("WaitURL: %v", err)
	}
}

func TestWaitCancelledContext(t *testing.T) {
	hl := NewHostLimiter(0.001, 1) // effectively blocked after the first token
	ctx := context.Background()
	if err := hl.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hl.Wait(cancelled, "example.com"); err == nil {
		t.Error("expected error from cancelled context")
	}
}
