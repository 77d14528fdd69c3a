package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// siteServer serves a static path->HTML map and counts hits per path.
type siteServer struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newSiteServer(t *testing.T, pages map[string]string) *siteServer {
	t.Helper()

	s := &siteServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if body == "ABORT" {
			panic(http.ErrAbortHandler)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *siteServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// newTestFrontier builds a Frontier against the test server with fast
// retries so failure paths don't slow the suite down.
func newTestFrontier(t *testing.T, srv *siteServer, opts Options) *Frontier {
	t.Helper()

	if opts.Client == nil {
		opts.Client = srv.Client()
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1000
	}
	// Zero here means the test did not care about depth, not a
	// single-page crawl. Depth-zero cases build the Frontier directly.
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	f, err := NewFrontier(srv.URL, opts)
	if err != nil {
		t.Fatalf("NewFrontier: %v", err)
	}
	f.fetcher.policy = fastFetchPolicy
	return f
}

// pageHTML builds a minimal healthy page linking to the given hrefs.
func pageHTML(title string, hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>" + title + "</title>")
	sb.WriteString(`<meta name="description" content="desc"></head><body><h1>h</h1>`)
	for _, href := range hrefs {
		sb.WriteString(`<a href="` + href + `">x</a>`)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// TestNewFrontierInvalidStartURL tests fail-fast construction.
func TestNewFrontierInvalidStartURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		startURL string
	}{
		{name: "unparseable", startURL: "://nope"},
		{name: "no scheme", startURL: "example.com/page"},
		{name: "bad scheme", startURL: "ftp://example.com"},
		{name: "no host", startURL: "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewFrontier(tt.startURL, Options{}); err == nil {
				t.Errorf("NewFrontier(%q) succeeded, want error", tt.startURL)
			}
		})
	}
}

// TestCrawlSingleFlight tests that many links to the same URL cause
// exactly one fetch.
func TestCrawlSingleFlight(t *testing.T) {
	t.Parallel()

	dupLinks := make([]string, 100)
	for i := range dupLinks {
		dupLinks[i] = "/dup"
	}
	srv := newSiteServer(t, map[string]string{
		"/":    pageHTML("Home", dupLinks...),
		"/dup": pageHTML("Dup"),
	})

	f := newTestFrontier(t, srv, Options{Concurrency: 8})
	results := f.Crawl(t.Context())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if got := srv.hitCount("/dup"); got != 1 {
		t.Errorf("/dup fetched %d times, want 1", got)
	}
}

// TestCrawlDepthCeiling tests that links beyond maxDepth are dropped.
func TestCrawlDepthCeiling(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":   pageHTML("d0", "/d1"),
		"/d1": pageHTML("d1", "/d2"),
		"/d2": pageHTML("d2", "/d3"),
		"/d3": pageHTML("d3"),
	})

	f := newTestFrontier(t, srv, Options{MaxDepth: 1})
	results := f.Crawl(t.Context())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (depth 0 and 1)", len(results))
	}
	if got := srv.hitCount("/d2"); got != 0 {
		t.Errorf("/d2 fetched %d times, want 0", got)
	}
}

// TestCrawlDepthZero tests that depth zero fetches exactly the start page.
func TestCrawlDepthZero(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":      pageHTML("Home", "/child"),
		"/child": pageHTML("Child"),
	})

	f, err := NewFrontier(srv.URL, Options{
		MaxDepth:          0,
		Client:            srv.Client(),
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("NewFrontier: %v", err)
	}
	f.fetcher.policy = fastFetchPolicy
	results := f.Crawl(t.Context())

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), resultURLs(results))
	}
	if got := srv.hitCount("/child"); got != 0 {
		t.Errorf("/child fetched %d times, want 0", got)
	}
	if len(results[0].OutboundLinks) == 0 {
		t.Error("start page links should still be recorded")
	}
}

// TestNewFrontierDepthDefault tests that only negative depths fall back.
func TestNewFrontierDepthDefault(t *testing.T) {
	t.Parallel()

	f, err := NewFrontier("https://example.com", Options{MaxDepth: -1})
	if err != nil {
		t.Fatalf("NewFrontier: %v", err)
	}
	if f.maxDepth != DefaultMaxDepth {
		t.Errorf("negative depth became %d, want %d", f.maxDepth, DefaultMaxDepth)
	}

	f, err = NewFrontier("https://example.com", Options{MaxDepth: 0})
	if err != nil {
		t.Fatalf("NewFrontier: %v", err)
	}
	if f.maxDepth != 0 {
		t.Errorf("zero depth became %d, want 0", f.maxDepth)
	}
}

// TestCrawlPageBudget tests that the result set never exceeds maxPages
// even on a site with an effectively unbounded link graph.
func TestCrawlPageBudget(t *testing.T) {
	t.Parallel()

	// Every page links to ten fresh pages.
	srv := &siteServer{hits: make(map[string]int)}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.mu.Lock()
		srv.hits[r.URL.Path]++
		srv.mu.Unlock()

		links := make([]string, 10)
		for i := range links {
			links[i] = fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), i)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pageHTML("p", links...)))
	}))
	t.Cleanup(srv.Server.Close)

	f := newTestFrontier(t, srv, Options{MaxPages: 7, MaxDepth: 10, Concurrency: 4})
	results := f.Crawl(t.Context())

	if len(results) > 7 {
		t.Errorf("got %d results, want at most 7", len(results))
	}
	if len(results) == 0 {
		t.Error("expected some results")
	}
}

// TestCrawlScopeContainment tests that external hosts are discovered but
// never crawled.
func TestCrawlScopeContainment(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":       pageHTML("Home", "https://external.example.org/page", "/inside"),
		"/inside": pageHTML("Inside"),
	})

	f := newTestFrontier(t, srv, Options{})
	results := f.Crawl(t.Context())

	origin, _ := url.Parse(srv.URL)
	foundExternalLink := false
	for _, page := range results {
		u, err := url.Parse(page.URL)
		if err != nil || !strings.EqualFold(u.Hostname(), origin.Hostname()) {
			t.Errorf("result %q is outside the start host", page.URL)
		}
		for _, link := range page.OutboundLinks {
			if strings.Contains(link, "external.example.org") {
				foundExternalLink = true
			}
		}
	}
	if !foundExternalLink {
		t.Error("external link should still appear in outboundLinks")
	}
}

// TestCrawlSkipRules tests the extension and path-segment skip lists.
func TestCrawlSkipRules(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/": pageHTML("Home",
			"/doc.PDF", "/style.css", "/wp-admin/login", "/feed", "/keep"),
		"/keep": pageHTML("Keep"),
	})

	f := newTestFrontier(t, srv, Options{})
	results := f.Crawl(t.Context())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, path := range []string{"/doc.PDF", "/style.css", "/wp-admin/login", "/feed"} {
		if got := srv.hitCount(path); got != 0 {
			t.Errorf("%s fetched %d times, want 0", path, got)
		}
	}
}

// TestCrawlIgnorePatterns tests caller-supplied path ignore patterns.
func TestCrawlIgnorePatterns(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/": pageHTML("Home",
			"/search?q=x", "/cart/checkout", "/Search/advanced", "/keep"),
		"/keep": pageHTML("Keep"),
	})

	f := newTestFrontier(t, srv, Options{
		IgnorePatterns: []string{"/search", "/cart"},
	})
	results := f.Crawl(t.Context())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), resultURLs(results))
	}
	for _, path := range []string{"/search", "/cart/checkout", "/Search/advanced"} {
		if got := srv.hitCount(path); got != 0 {
			t.Errorf("%s fetched %d times, want 0", path, got)
		}
	}
}

// TestCrawlNormalizationDeduplicates tests that fragment and trailing-slash
// variants collapse to one visit.
func TestCrawlNormalizationDeduplicates(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":  pageHTML("Home", "/a", "/a/", "/a#section", "/a/#other"),
		"/a": pageHTML("A"),
	})

	f := newTestFrontier(t, srv, Options{})
	results := f.Crawl(t.Context())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), resultURLs(results))
	}
	if got := srv.hitCount("/a"); got != 1 {
		t.Errorf("/a fetched %d times, want 1", got)
	}
}

// TestCrawlRecordsBrokenAndUnreachablePages tests synthetic results.
func TestCrawlRecordsBrokenAndUnreachablePages(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":     pageHTML("Home", "/gone", "/dead"),
		"/dead": "ABORT", // connection dropped mid-response
	})

	f := newTestFrontier(t, srv, Options{})
	results := f.Crawl(t.Context())

	byURL := make(map[string]*model.PageResult)
	for _, page := range results {
		u, _ := url.Parse(page.URL)
		byURL[u.Path] = page
	}

	gone, ok := byURL["/gone"]
	if !ok {
		t.Fatal("missing result for /gone")
	}
	if gone.Status != http.StatusNotFound {
		t.Errorf("/gone status = %d, want 404", gone.Status)
	}

	dead, ok := byURL["/dead"]
	if !ok {
		t.Fatal("missing result for /dead")
	}
	if dead.Status != model.StatusUnreachable {
		t.Errorf("/dead status = %d, want %d", dead.Status, model.StatusUnreachable)
	}
	if len(dead.Issues) != 1 || dead.Issues[0] != model.IssueUnreachable {
		t.Errorf("/dead issues = %v", dead.Issues)
	}
	if len(dead.OutboundLinks) != 0 {
		t.Errorf("/dead should have no links, got %v", dead.OutboundLinks)
	}
}

// TestCrawlProgressCallback tests the progress notifications.
func TestCrawlProgressCallback(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/":  pageHTML("Home", "/a", "/b"),
		"/a": pageHTML("A"),
		"/b": pageHTML("B"),
	})

	var mu sync.Mutex
	var crawledCounts []int
	f := newTestFrontier(t, srv, Options{
		Concurrency: 1,
		OnProgress: func(crawled, queued int) {
			mu.Lock()
			crawledCounts = append(crawledCounts, crawled)
			mu.Unlock()
		},
	})
	results := f.Crawl(t.Context())

	mu.Lock()
	defer mu.Unlock()
	if len(crawledCounts) != len(results) {
		t.Fatalf("progress called %d times, want %d", len(crawledCounts), len(results))
	}
	last := crawledCounts[len(crawledCounts)-1]
	if last != len(results) {
		t.Errorf("final crawled count = %d, want %d", last, len(results))
	}
}

// TestCrawlConcurrencyCap tests that in-flight fetches never exceed the cap.
func TestCrawlConcurrencyCap(t *testing.T) {
	t.Parallel()

	const limit = 3

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	links := make([]string, 20)
	pages := map[string]string{}
	for i := range links {
		links[i] = fmt.Sprintf("/p%d", i)
		pages[links[i]] = pageHTML(fmt.Sprintf("p%d", i))
	}
	pages["/"] = pageHTML("Home", links...)

	srv := &siteServer{hits: make(map[string]int)}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pages[r.URL.Path]))
	}))
	t.Cleanup(srv.Server.Close)

	f := newTestFrontier(t, srv, Options{Concurrency: limit})
	f.Crawl(t.Context())

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight > limit {
		t.Errorf("observed %d concurrent fetches, limit is %d", maxInFlight, limit)
	}
}

func resultURLs(results []*model.PageResult) []string {
	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
	}
	return urls
}
