// Package ratelimit paces outgoing requests using token bucket algorithm.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a certain number of requests (tokens) per time window,
// with tokens refilling at a steady rate.
type TokenBucket struct {
	capacity   int        // Maximum tokens (burst capacity)
	refillRate float64    // Tokens per second
	tokens     float64    // Current tokens available; negative when reserved ahead
	lastRefill time.Time  // Last time tokens were refilled
	mu         sync.Mutex // Mutex for thread safety

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a bucket allowing limit requests per window with the given
// burst. A burst below 1 uses limit.
func New(limit int, window time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = limit
	}
	return &TokenBucket{
		capacity:   burst,
		refillRate: float64(limit) / window.Seconds(),
		tokens:     float64(burst), // Start with full bucket
		lastRefill: time.Now(),
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// PerMinute returns a bucket allowing n requests per minute, or nil when n
// is not positive. A nil bucket never blocks.
func PerMinute(n int) *TokenBucket {
	if n <= 0 {
		return nil
	}
	return New(n, time.Minute, n)
}

// refill adds the tokens earned since the last call. The caller holds mu.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = math.Min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Reserve consumes a token and returns how long the caller must wait before
// using it.
func (tb *TokenBucket) Reserve() time.Duration {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.tokens -= 1.0
	if tb.tokens >= 0 {
		return 0
	}
	return time.Duration(-tb.tokens / tb.refillRate * float64(time.Second))
}

// Wait blocks until a token is available or ctx is done. The token stays
// consumed when ctx ends first.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	if tb == nil {
		return ctx.Err()
	}
	if d := tb.Reserve(); d > 0 {
		return tb.sleep(ctx, d)
	}
	return ctx.Err()
}

// Status returns the whole tokens left and when the bucket will be full again.
func (tb *TokenBucket) Status() (remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	remaining = max(int(tb.tokens), 0)
	resetTime = tb.lastRefill
	if tb.tokens < float64(tb.capacity) {
		tokensNeeded := float64(tb.capacity) - tb.tokens
		resetTime = resetTime.Add(time.Duration(tokensNeeded / tb.refillRate * float64(time.Second)))
	}
	return remaining, resetTime
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
