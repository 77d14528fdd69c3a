package crawler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastPolicy keeps backoff delays negligible in tests.
func fastPolicy(maxRetries int, isRetryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
		IsRetryable:   isRetryable,
	}
}

// TestRetrySucceedsFirstAttempt tests that a successful op runs once.
func TestRetrySucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Retry(context.Background(), fastPolicy(3, nil), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

// TestRetryExhaustsAttempts tests that an always-failing retryable op runs
// exactly maxRetries+1 times and the last error propagates.
func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("network down")
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3, func(error) bool { return true }), func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if calls != 4 {
		t.Errorf("op called %d times, want 4 (maxRetries+1)", calls)
	}
}

// TestRetryRecoversMidway tests success after transient failures.
func TestRetryRecoversMidway(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Retry(context.Background(), fastPolicy(3, nil), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("timeout")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
}

// TestRetryStopsOnNonRetryable tests that the predicate short-circuits.
func TestRetryStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	fatal := errors.New("HTTP status 404")
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5, IsRetryableFetchError), func() (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1 for non-retryable error", calls)
	}
}

// TestRetryRespectsContext tests that backoff sleeps abort on cancellation.
func TestRetryRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Hour, // only cancellation can end the backoff
	}

	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, policy, func() (int, error) {
			return 0, errors.New("network glitch")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not return after cancellation")
	}
}

// TestIsRetryableFetchError tests the crawler's retryability predicate.
func TestIsRetryableFetchError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "network keyword", err: errors.New("Network unreachable"), want: true},
		{name: "timeout keyword", err: errors.New("context deadline exceeded (Client.Timeout exceeded)"), want: true},
		{name: "connection reset", err: errors.New("read: connection reset by peer"), want: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "socket hang up", err: errors.New("socket hang up"), want: true},
		{name: "dns failure", err: errors.New("lookup example.invalid: no such host"), want: true},
		{name: "status 429", err: &httpStatusError{status: 429}, want: true},
		{name: "status 503", err: &httpStatusError{status: 503}, want: true},
		{name: "status 404", err: &httpStatusError{status: 404}, want: false},
		{name: "unrelated", err: errors.New("certificate expired"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsRetryableFetchError(tt.err); got != tt.want {
				t.Errorf("IsRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
