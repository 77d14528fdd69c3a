package crawler

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestsPerSecond is the rate limit applied when none is configured.
const DefaultRequestsPerSecond = 10

// Limiter is a token-bucket rate limiter shared by all fetch attempts of
// one crawl. Capacity refills continuously at the configured rate and each
// Acquire consumes one token, suspending the caller while the bucket is
// empty.
//
// Design decision: We hand-roll the bucket instead of adopting a limiter
// library because the refill arithmetic is part of the crawler's observable
// contract (acquisitions per sliding second) and the whole thing is a few
// lines of guarded state. The bucket balance is allowed to dip slightly
// below zero when concurrent waiters wake at once; the deficit self-corrects
// on the next refill and keeps waiters from double-spending a single token.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewLimiter creates a Limiter allowing requestsPerSecond acquisitions per
// second, with burst capacity equal to the rate. Non-positive rates fall
// back to DefaultRequestsPerSecond.
func NewLimiter(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	return &Limiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond,
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Acquire blocks until one unit of capacity is available, then consumes it.
// It returns early only when the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	l.refillLocked(time.Now())
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return nil
	}

	// Wait long enough to accumulate one whole token, then consume it.
	// The balance may go slightly negative if another waiter woke first.
	wait := time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	l.mu.Lock()
	l.refillLocked(time.Now())
	l.tokens--
	l.mu.Unlock()
	return nil
}

// refillLocked adds tokens for the time elapsed since the last refill,
// capped at the bucket size. The caller must hold l.mu.
func (l *Limiter) refillLocked(now time.Time) {
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	l.tokens += elapsed * l.refillRate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastRefill = now
}
