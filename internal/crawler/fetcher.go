package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Fetcher defaults. The per-request timeout and body cap are deliberately
// conservative; large sites are bounded by the crawl budget, not by how
// much of a single response we are willing to read.
const (
	// DefaultFetchTimeout bounds one HTTP attempt.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultUserAgent identifies seo-cli in request logs.
	DefaultUserAgent = "seo-cli/1.0 (+https://github.com/SnickerSec/seo-cli)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// fetchMaxRetries and fetchInitialDelay configure the retry wrapper
	// around each page fetch. Two retries keep a flaky page from stalling
	// the whole crawl behind the full default backoff schedule.
	fetchMaxRetries   = 2
	fetchInitialDelay = 500 * time.Millisecond
)

// FetchResult is the classified outcome of one page fetch.
// A nil FetchResult never occurs on success: non-HTML responses and
// timeouts still produce a result, with empty HTML. Callers must treat
// empty HTML as "nothing to parse", not as a failure.
type FetchResult struct {
	// HTML is the response body, empty when the response was not HTML
	// or the request timed out.
	HTML string

	// Status is the HTTP status code; 408 is synthesized for timeouts.
	Status int
}

// httpStatusError marks a response whose status is worth retrying.
// It is surfaced as an error so the retry wrapper sees it; the message
// carries the numeric status for the retryability predicate.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP status %d", e.status)
}

// Fetcher issues rate-limited, retried, timeout-bounded GET requests and
// classifies the responses.
//
// Design decision: We take the HTTP client from the caller rather than
// building one because:
//  1. Timeout and redirect policy belong to the caller's configuration
//  2. Tests can substitute an httptest client
//  3. One client (and its connection pool) is shared across the crawl
type Fetcher struct {
	// client performs the requests. It should follow redirects (the
	// default) and carry the per-attempt timeout.
	client *http.Client

	// limiter gates every attempt, including retries.
	limiter *Limiter

	// policy wraps each fetch in exponential backoff.
	policy RetryPolicy

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits how many body bytes are read.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithRetryPolicy overrides the fetch retry policy.
func WithRetryPolicy(policy RetryPolicy) FetcherOption {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithFetchLogger sets a custom logger for the fetcher.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using the given client and rate limiter.
// A nil client gets a default one with DefaultFetchTimeout.
func NewFetcher(client *http.Client, limiter *Limiter, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if limiter == nil {
		limiter = NewLimiter(DefaultRequestsPerSecond)
	}

	f := &Fetcher{
		client:      client,
		limiter:     limiter,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
		policy: RetryPolicy{
			MaxRetries:   fetchMaxRetries,
			InitialDelay: fetchInitialDelay,
			IsRetryable:  IsRetryableFetchError,
		},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one rate-limited, retried GET of pageURL.
//
// Classification:
//   - HTML response: body and status
//   - non-HTML response: empty HTML, real status
//   - timeout after retries: empty HTML, status 408
//   - anything else unrecoverable: nil result and the error, meaning the
//     page is unreachable (distinct from a valid non-2xx response)
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	result, err := Retry(ctx, f.policy, func() (*FetchResult, error) {
		return f.fetchOnce(ctx, pageURL)
	})
	if err != nil {
		if isTimeout(err) {
			f.logger.Debug("fetch timed out", "url", pageURL)
			return &FetchResult{HTML: "", Status: http.StatusRequestTimeout}, nil
		}
		f.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return nil, err
	}
	return result, nil
}

// fetchOnce is a single attempt: acquire a token, GET, classify.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*FetchResult, error) {
	if err := f.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Retryable statuses become errors so the backoff wrapper sees them.
	for _, status := range retryableStatuses {
		if resp.StatusCode == status {
			_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Draining for connection reuse
			return nil, &httpStatusError{status: resp.StatusCode}
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Draining for connection reuse
		return &FetchResult{HTML: "", Status: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	return &FetchResult{HTML: string(body), Status: resp.StatusCode}, nil
}

// isTimeout reports whether err is a request timeout rather than some
// other unrecoverable failure.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
