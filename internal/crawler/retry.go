package crawler

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Default retry behavior applied when a RetryPolicy field is left zero.
const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultInitialDelay is the backoff before the first retry.
	DefaultInitialDelay = 1 * time.Second

	// DefaultMaxDelay caps the exponential backoff growth.
	DefaultMaxDelay = 30 * time.Second

	// DefaultBackoffFactor doubles the delay between consecutive retries.
	DefaultBackoffFactor = 2
)

// RetryPolicy configures the exponential-backoff retry wrapper.
//
// An operation runs up to MaxRetries+1 times. After each failure the
// wrapper sleeps for the current delay, then multiplies it by
// BackoffFactor, never exceeding MaxDelay. IsRetryable decides whether a
// given error is worth another attempt; nil means every error is.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	IsRetryable   func(error) bool
}

// withDefaults fills zero fields with the package defaults.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = DefaultBackoffFactor
	}
	return p
}

// Retry runs op until it succeeds, the error is not retryable, or the
// attempt budget is spent, in which case the last error is returned.
// Backoff sleeps respect context cancellation.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	policy = policy.withDefaults()

	var zero T
	var lastErr error
	delay := policy.InitialDelay

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxRetries {
			break
		}
		if policy.IsRetryable != nil && !policy.IsRetryable(err) {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * policy.BackoffFactor)
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return zero, lastErr
}

// retryableStatuses are the HTTP statuses worth retrying: rate limiting
// and transient server-side failures.
var retryableStatuses = []int{429, 500, 502, 503, 504}

// retryableFragments are error-message substrings that indicate a
// transient network problem.
var retryableFragments = []string{
	"network",
	"timeout",
	"connection reset",
	"connection refused",
	"socket hang up",
	"no such host",
}

// IsRetryableFetchError classifies fetch errors for the crawler's retry
// policy: transient network blips and retryable HTTP statuses return true,
// everything else is treated as permanent.
func IsRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	for _, status := range retryableStatuses {
		if strings.Contains(msg, strconv.Itoa(status)) {
			return true
		}
	}
	return false
}
