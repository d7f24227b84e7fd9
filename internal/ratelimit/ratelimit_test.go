package ratelimit

import (
	"context"
	"testing"
	"time"
)

func countAllowed(t *testing.T, limiter RateLimiter, key string, requests int) int {
	t.Helper()

	allowed := 0
	for i := 0; i < requests; i++ {
		ok, err := limiter.Allow(context.Background(), key)
		if err != nil {
			t.Fatalf("Allow() error: %v", err)
		}
		if ok {
			allowed++
		}
	}
	return allowed
}

func TestTokenBucket_AllowsUpToLimit(t *testing.T) {
	limiter := NewTokenBucket(Config{Requests: 10, Window: time.Minute, Burst: 15})
	key := "192.0.2.10:/api/orders/*"

	if got := countAllowed(t, limiter, key, 20); got != 10 {
		t.Errorf("Expected 10 of 20 requests allowed from a fresh bucket, got %d", got)
	}

	stats := limiter.Stats(key)
	if stats.Allowed != 10 || stats.Denied != 10 {
		t.Errorf("Expected 10 allowed / 10 denied, got %d / %d", stats.Allowed, stats.Denied)
	}
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	limiter := NewTokenBucket(Config{Requests: 2, Window: time.Minute})

	countAllowed(t, limiter, "192.0.2.10:/api/orders/*", 5)

	if got := countAllowed(t, limiter, "192.0.2.11:/api/products/*", 2); got != 2 {
		t.Errorf("Exhausting one client must not affect another, got %d of 2 allowed", got)
	}
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	limiter := NewTokenBucket(Config{Requests: 2, Window: 100 * time.Millisecond})
	key := "192.0.2.10:/api/users/*"

	if got := countAllowed(t, limiter, key, 3); got != 2 {
		t.Fatalf("Expected 2 of 3 requests allowed, got %d", got)
	}

	time.Sleep(120 * time.Millisecond)

	ok, err := limiter.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !ok {
		t.Error("Expected request allowed after the window refilled tokens")
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	limiter := NewTokenBucket(Config{Requests: 2, Window: time.Minute})
	key := "192.0.2.10:/api/orders/*"

	countAllowed(t, limiter, key, 3)
	limiter.Reset(key)

	ok, err := limiter.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !ok {
		t.Error("Expected request allowed after reset")
	}

	stats := limiter.Stats(key)
	if stats.Allowed != 1 || stats.Denied != 0 {
		t.Errorf("Reset must clear counters, got %d allowed / %d denied", stats.Allowed, stats.Denied)
	}
}

func TestTokenBucket_StatsUnknownKey(t *testing.T) {
	limiter := NewTokenBucket(Config{Requests: 5, Window: time.Minute})

	stats := limiter.Stats("192.0.2.99:/api/orders/*")
	if stats.Allowed != 0 || stats.Denied != 0 {
		t.Errorf("Expected empty stats for unknown key, got %d / %d", stats.Allowed, stats.Denied)
	}
}

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	limiter := NewFixedWindow(Config{Requests: 5, Window: time.Minute})
	key := "192.0.2.10:/api/products/*"

	if got := countAllowed(t, limiter, key, 8); got != 5 {
		t.Errorf("Expected 5 of 8 requests allowed, got %d", got)
	}

	stats := limiter.Stats(key)
	if stats.Denied != 3 {
		t.Errorf("Expected 3 denied, got %d", stats.Denied)
	}
	if stats.ResetTime.IsZero() {
		t.Error("Expected reset time set")
	}
}

func TestFixedWindow_NewWindowClearsCount(t *testing.T) {
	limiter := NewFixedWindow(Config{Requests: 1, Window: 50 * time.Millisecond})
	key := "192.0.2.10:/api/orders/*"

	countAllowed(t, limiter, key, 2)
	time.Sleep(60 * time.Millisecond)

	ok, err := limiter.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !ok {
		t.Error("Expected request allowed in the next window")
	}
}

func TestNewRateLimiter_AlgorithmChoice(t *testing.T) {
	cfg := Config{Requests: 10, Window: time.Minute}

	if _, ok := NewRateLimiter(cfg, "token-bucket").(*TokenBucket); !ok {
		t.Error("Expected token bucket for 'token-bucket'")
	}
	if _, ok := NewRateLimiter(cfg, "fixed-window").(*FixedWindow); !ok {
		t.Error("Expected fixed window for 'fixed-window'")
	}
	// Неизвестный алгоритм дает token bucket
	if _, ok := NewRateLimiter(cfg, "sliding-log").(*TokenBucket); !ok {
		t.Error("Expected token bucket fallback for unknown algorithm")
	}

	if limit := NewRateLimiter(cfg, "token-bucket").Limit(); limit != 10 {
		t.Errorf("Expected limit 10, got %d", limit)
	}
}
