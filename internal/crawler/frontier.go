package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// Frontier defaults, overridable through Options.
const (
	// DefaultMaxDepth limits how far from the start URL links are followed.
	DefaultMaxDepth = 3

	// DefaultMaxPages bounds the crawl result set.
	DefaultMaxPages = 100

	// DefaultConcurrency is the number of fetches allowed in flight.
	DefaultConcurrency = 5

	// admissionYield is how long the admission loop sleeps between passes
	// so in-flight work can progress without the loop busy-spinning.
	admissionYield = 10 * time.Millisecond
)

// skippedExtensions are path suffixes that never contain crawlable HTML.
var skippedExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".css", ".js", ".xml", ".json", ".zip", ".mp4", ".mp3", ".wav",
	".avi", ".mov",
}

// skippedPathSegments are well-known non-content path fragments.
var skippedPathSegments = []string{
	"/wp-admin", "/wp-content", "/wp-includes", "/feed", "/rss", "/xmlrpc",
}

// Options configures a Frontier. Zero values fall back to the package
// defaults, so callers only set what they need. MaxDepth is the one
// exception: zero is a meaningful depth, so only negative values default.
type Options struct {
	// MaxDepth is the deepest link distance fetched. Links discovered on a
	// page at MaxDepth are dropped, never queued. Zero fetches only the
	// start URL; negative values fall back to DefaultMaxDepth.
	MaxDepth int

	// MaxPages bounds how many results the crawl may collect.
	MaxPages int

	// Concurrency caps the number of fetches in flight at once.
	Concurrency int

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// RequestsPerSecond feeds the shared token-bucket limiter. This is an
	// independent throttle layered under the concurrency cap.
	RequestsPerSecond float64

	// UserAgent overrides the default crawler identification.
	UserAgent string

	// IgnorePatterns are URL path substrings to skip during crawling, in
	// addition to the built-in asset and admin-path skip lists. The start
	// URL itself is never skipped.
	IgnorePatterns []string

	// Client, when set, replaces the default HTTP client. Used by tests
	// and by callers that need custom transport settings.
	Client *http.Client

	// OnProgress, when set, is invoked after each page completes with the
	// number of collected results and the current queue length.
	OnProgress func(crawled, queued int)

	// Logger receives structured crawl logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Frontier owns one crawl: the discovered-but-unfetched queue, the visited
// set, the results map, and the admission loop that drives fetch/parse
// cycles under the concurrency and rate limits.
//
// Each Frontier owns its own limiter and state, so independent crawls can
// run concurrently within one process.
//
// Design decision: Shared state (queue, visited, results, active counter)
// is guarded by a single mutex held only across short synchronous sections.
// In particular the check-and-mark-visited step happens under the lock
// before a fetch starts, which is what makes visitation single-flight.
type Frontier struct {
	fetcher        *Fetcher
	origin         *url.URL
	maxDepth       int
	maxPages       int
	concurrency    int
	ignorePatterns []string
	onProgress     func(crawled, queued int)
	logger         *slog.Logger

	mu      sync.Mutex
	queue   []model.CrawlTarget
	visited map[string]bool
	results map[string]*model.PageResult
	order   []string
	active  int
}

// NewFrontier creates a Frontier seeded with the normalized start URL at
// depth 0. An invalid start URL is a construction-time error: it fails
// here, before any crawl work begins.
func NewFrontier(startURL string, opts Options) (*Frontier, error) {
	origin, err := url.Parse(strings.TrimSpace(startURL))
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, err)
	}
	if origin.Scheme != "http" && origin.Scheme != "https" {
		return nil, fmt.Errorf("invalid start URL %q: scheme must be http or https", startURL)
	}
	if origin.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q: missing host", startURL)
	}

	if opts.MaxDepth < 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	fetcherOpts := []FetcherOption{WithFetchLogger(opts.Logger)}
	if opts.UserAgent != "" {
		fetcherOpts = append(fetcherOpts, WithUserAgent(opts.UserAgent))
	}

	f := &Frontier{
		fetcher:        NewFetcher(client, NewLimiter(opts.RequestsPerSecond), fetcherOpts...),
		origin:         origin,
		maxDepth:       opts.MaxDepth,
		maxPages:       opts.MaxPages,
		concurrency:    opts.Concurrency,
		ignorePatterns: opts.IgnorePatterns,
		onProgress:     opts.OnProgress,
		logger:         opts.Logger,
		visited:        make(map[string]bool),
		results:        make(map[string]*model.PageResult),
	}

	seed, ok := f.normalize(startURL)
	if !ok {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}
	f.queue = append(f.queue, model.CrawlTarget{URL: seed, Depth: 0, FoundOnURL: "start"})

	return f, nil
}

// Crawl runs until the queue is empty and no fetch is in flight, then
// returns every collected PageResult in the order results were stored.
//
// Cancelling the context stops the loop from admitting new work; fetches
// already in flight finish (or time out) and their results are kept.
// Per-page failures are recorded as zero-status results, never returned
// as errors.
func (f *Frontier) Crawl(ctx context.Context) []*model.PageResult {
	var wg sync.WaitGroup

	for {
		f.mu.Lock()
		cancelled := ctx.Err() != nil
		if !cancelled {
			// Admit work while under the concurrency cap and page budget.
			for len(f.queue) > 0 && f.active < f.concurrency && len(f.results) < f.maxPages {
				target := f.queue[0]
				f.queue = f.queue[1:]

				// Check-and-mark under the lock, before the fetch's first
				// suspension point. Duplicates still in the queue die here.
				if f.visited[target.URL] {
					continue
				}
				f.visited[target.URL] = true
				f.active++

				wg.Add(1)
				go func(target model.CrawlTarget) {
					defer wg.Done()
					f.process(ctx, target)
				}(target)
			}
		}
		done := f.active == 0 &&
			(cancelled || len(f.queue) == 0 || len(f.results) >= f.maxPages)
		f.mu.Unlock()

		if done {
			break
		}
		time.Sleep(admissionYield)
	}

	wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.PageResult, 0, len(f.order))
	for _, u := range f.order {
		out = append(out, f.results[u])
	}
	return out
}

// process fetches and parses one target, stores its result, and feeds the
// links it discovered back into the queue.
func (f *Frontier) process(ctx context.Context, target model.CrawlTarget) {
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	fetched, err := f.fetcher.Fetch(ctx, target.URL)

	var page *model.PageResult
	if err != nil {
		// Unreachable: recovered locally as data, never an error upward.
		page = &model.PageResult{
			URL:           target.URL,
			Status:        model.StatusUnreachable,
			Issues:        []string{model.IssueUnreachable},
			OutboundLinks: make([]string, 0),
			Images:        make([]model.PageImage, 0),
		}
		f.logger.Debug("page unreachable", "url", target.URL, "foundOn", target.FoundOnURL, "error", err)
	} else {
		page = ParsePage(target.URL, fetched.HTML, fetched.Status)
	}

	f.mu.Lock()
	if len(f.results) >= f.maxPages {
		// Budget filled while this fetch was in flight.
		f.mu.Unlock()
		return
	}
	f.results[target.URL] = page
	f.order = append(f.order, target.URL)

	if err == nil && page.Status == http.StatusOK && target.Depth < f.maxDepth {
		f.enqueueLinksLocked(page, target.Depth+1)
	}

	crawled, queued := len(f.results), len(f.queue)
	onProgress := f.onProgress
	f.mu.Unlock()

	if onProgress != nil {
		onProgress(crawled, queued)
	}
}

// enqueueLinksLocked queues every eligible outbound link of page at the
// given depth. The caller must hold f.mu.
func (f *Frontier) enqueueLinksLocked(page *model.PageResult, depth int) {
	for _, link := range page.OutboundLinks {
		normalized, ok := f.normalize(link)
		if !ok {
			continue
		}
		if !f.inScope(normalized) || f.visited[normalized] || shouldSkip(normalized) || f.ignoredPath(normalized) {
			continue
		}
		f.queue = append(f.queue, model.CrawlTarget{
			URL:        normalized,
			Depth:      depth,
			FoundOnURL: page.URL,
		})
	}
}

// normalize resolves raw against the start URL's origin and canonicalizes
// it. The second return value is false for unparseable or non-HTTP URLs,
// which are silently dropped at the point of discovery.
func (f *Frontier) normalize(raw string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	resolved := f.origin.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}
	return canonicalURL(resolved), true
}

// inScope reports whether a normalized URL stays on the start hostname.
func (f *Frontier) inScope(normalized string) bool {
	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), f.origin.Hostname())
}

// canonicalURL renders u in canonical form: lowercased scheme and host, no
// fragment, empty path promoted to "/", and one trailing slash stripped
// unless the path is just "/" (the bare origin).
func canonicalURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if c.Path == "" {
		c.Path = "/"
	}
	if len(c.Path) > 1 {
		c.Path = strings.TrimSuffix(c.Path, "/")
	}
	return c.String()
}

// ignoredPath reports whether a normalized URL's path contains one of the
// caller-supplied ignore patterns. Matching is a case-insensitive substring
// check, same as the built-in skip list.
func (f *Frontier) ignoredPath(normalized string) bool {
	if len(f.ignorePatterns) == 0 {
		return false
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return true
	}
	path := strings.ToLower(u.Path)
	for _, pattern := range f.ignorePatterns {
		if pattern != "" && strings.Contains(path, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// shouldSkip reports whether a normalized URL points at a known non-HTML
// asset or a well-known non-content path.
func shouldSkip(normalized string) bool {
	u, err := url.Parse(normalized)
	if err != nil {
		return true
	}
	path := strings.ToLower(u.Path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, segment := range skippedPathSegments {
		if strings.Contains(path, segment) {
			return true
		}
	}
	return false
}
