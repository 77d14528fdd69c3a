package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SnickerSec/seo-cli/internal/analyzer"
	"github.com/SnickerSec/seo-cli/internal/config"
	"github.com/SnickerSec/seo-cli/internal/crawler"
	"github.com/SnickerSec/seo-cli/internal/database"
	"github.com/SnickerSec/seo-cli/internal/model"
)

// CrawlStep performs the breadth-first crawl of the target site.
// This step discovers pages, extracts on-page data, and records per-page
// SEO issues. Every later step operates on what the crawl collected.
//
// Design decision: Crawling is its own step rather than part of the
// analyzers because:
// 1. It has different configuration (depth, page budget, rate)
// 2. It produces the data the analyzers consume
// 3. Its duration is the number users care about, so we measure it here
type CrawlStep struct {
	// maxDepth limits crawl recursion.
	maxDepth int

	// maxPages limits total pages to crawl.
	maxPages int

	// concurrency caps in-flight fetches.
	concurrency int

	// rate is the requests-per-second crawl throttle.
	rate float64

	// timeout bounds each HTTP attempt.
	timeout time.Duration

	// userAgent is the User-Agent header to send with requests.
	// A descriptive User-Agent helps site operators identify audit traffic.
	userAgent string

	// ignorePatterns are URL path substrings to skip during crawling.
	ignorePatterns []string

	// client optionally replaces the default HTTP client.
	client *http.Client

	// onProgress is invoked after each crawled page.
	onProgress func(crawled, queued int)

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth. Depth zero crawls only
// the start URL.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlConcurrency sets the number of concurrent fetches.
func WithCrawlConcurrency(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.concurrency = n
	}
}

// WithCrawlRate sets the requests-per-second throttle.
func WithCrawlRate(rps float64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.rate = rps
	}
}

// WithCrawlTimeout sets the per-request timeout.
func WithCrawlTimeout(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.timeout = d
	}
}

// WithCrawlUserAgent sets the User-Agent header for HTTP requests.
func WithCrawlUserAgent(userAgent string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = userAgent
	}
}

// WithCrawlIgnorePatterns sets URL path patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlClient sets a custom HTTP client, mainly for tests and callers
// that need custom transport settings.
func WithCrawlClient(client *http.Client) CrawlStepOption {
	return func(s *CrawlStep) {
		s.client = client
	}
}

// WithCrawlProgress sets a callback invoked after each crawled page.
func WithCrawlProgress(fn func(crawled, queued int)) CrawlStepOption {
	return func(s *CrawlStep) {
		s.onProgress = fn
	}
}

// WithCrawlStepLogger sets a custom logger for the crawl step.
func WithCrawlStepLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step.
//
// Default politeness settings are conservative to be respectful of the
// audited site:
//   - rate: 10 requests per second (config.DefaultRequestsPerSecond)
//   - userAgent: identifies seo-cli (config.DefaultUserAgent)
//   - timeout: 10 seconds per request (config.DefaultTimeout)
func NewCrawlStep(opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		maxDepth:    config.DefaultMaxDepth,
		maxPages:    config.DefaultMaxPages,
		concurrency: config.DefaultConcurrency,
		rate:        config.DefaultRequestsPerSecond,
		timeout:     config.DefaultTimeout,
		userAgent:   config.DefaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
//
// An invalid start URL is the one failure that aborts the audit: nothing
// downstream can run without crawl results. Mid-crawl trouble (broken
// pages, unreachable hosts) is recorded per page, not returned as an error.
func (s *CrawlStep) Do(ctx context.Context, report *model.AuditReport) error {
	frontier, err := crawler.NewFrontier(report.StartURL, crawler.Options{
		MaxDepth:          s.maxDepth,
		MaxPages:          s.maxPages,
		Concurrency:       s.concurrency,
		Timeout:           s.timeout,
		RequestsPerSecond: s.rate,
		UserAgent:         s.userAgent,
		IgnorePatterns:    s.ignorePatterns,
		Client:            s.client,
		OnProgress:        s.onProgress,
		Logger:            s.logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	pages := frontier.Crawl(ctx)
	report.Pages = pages
	report.Duration = time.Since(start)

	if ctx.Err() != nil {
		// Crawl returns partial results on cancellation. Keep them and
		// flag the report so writers can say so.
		report.Cancelled = true
	}

	broken := 0
	for _, page := range pages {
		if page.Broken() {
			broken++
		}
	}
	s.logger.Info("crawl completed",
		"pages_crawled", len(pages),
		"broken_pages", broken,
		"duration", report.Duration,
	)

	return nil
}

// AnalyzeStep runs one site-level analyzer against the crawl results and
// appends its findings to the report. The same step type wraps every
// analyzer; the analyzer's own Name() identifies it in logs and in the
// report's performed-steps record.
type AnalyzeStep struct {
	// analyzer is the check to run.
	analyzer analyzer.Analyzer

	// userAgent identifies the auditor in analyzer-initiated requests.
	userAgent string

	// client is the HTTP client analyzers use for their own fetches.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeUserAgent sets the User-Agent for analyzer requests.
func WithAnalyzeUserAgent(userAgent string) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.userAgent = userAgent
	}
}

// WithAnalyzeClient sets the HTTP client for analyzer requests.
func WithAnalyzeClient(client *http.Client) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.client = client
	}
}

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a step that runs the given analyzer.
func NewAnalyzeStep(a analyzer.Analyzer, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		analyzer:  a,
		userAgent: config.DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the wrapped analyzer's name.
func (s *AnalyzeStep) Name() string {
	return s.analyzer.Name()
}

// Do executes the analyzer and stores its findings.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.AuditReport) error {
	// Skip if the crawl produced nothing to analyze
	if len(report.Pages) == 0 {
		s.logger.Debug("skipping analyzer, no pages crawled",
			"analyzer", s.analyzer.Name(),
		)
		return nil
	}

	data := &analyzer.AnalysisData{
		StartURL:  report.StartURL,
		Pages:     report.Pages,
		UserAgent: s.userAgent,
		Client:    s.client,
	}

	findings, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		// Non-fatal: the check could not run, but the audit can go on
		s.logger.Warn("analyzer failed",
			"analyzer", s.analyzer.Name(),
			"error", err,
		)
		return nil
	}

	for _, f := range findings {
		report.AddFinding(f)
	}

	// Sitemap declarations ride along as findings; surface them on the
	// report where writers expect them.
	if sitemaps := analyzer.SitemapsFromFindings(findings); len(sitemaps) > 0 {
		report.Sitemaps = append(report.Sitemaps, sitemaps...)
	}

	s.logger.Info("analyzer completed",
		"analyzer", s.analyzer.Name(),
		"findings_count", len(findings),
	)

	return nil
}

// SummaryStep reduces the crawl results into the site-wide summary.
// It runs after the crawl so the reduction sees every page, and before
// report writing so every writer gets the same numbers.
type SummaryStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// SummaryStepOption configures a SummaryStep.
type SummaryStepOption func(*SummaryStep)

// WithSummaryLogger sets a custom logger for the summary step.
func WithSummaryLogger(logger *slog.Logger) SummaryStepOption {
	return func(s *SummaryStep) {
		s.logger = logger
	}
}

// NewSummaryStep creates a new summary step.
func NewSummaryStep(opts ...SummaryStepOption) *SummaryStep {
	s := &SummaryStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do executes the summary step.
func (s *SummaryStep) Do(_ context.Context, report *model.AuditReport) error {
	report.Summary = crawler.GenerateSummary(report.Pages)

	s.logger.Info("summary generated",
		"total_pages", report.Summary.TotalPages,
		"issues", report.Summary.IssueCount(),
	)

	return nil
}

// ArchiveStep persists the finished report to the local audit database so
// later runs can list history and compare against it.
type ArchiveStep struct {
	// db is the audit database. A nil db turns the step into a no-op,
	// which keeps pipeline assembly simple when persistence is off.
	db *database.AuditDB

	// logger for structured logging.
	logger *slog.Logger
}

// ArchiveStepOption configures an ArchiveStep.
type ArchiveStepOption func(*ArchiveStep)

// WithArchiveLogger sets a custom logger for the archive step.
func WithArchiveLogger(logger *slog.Logger) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.logger = logger
	}
}

// NewArchiveStep creates a new archive step writing to db.
func NewArchiveStep(db *database.AuditDB, opts ...ArchiveStepOption) *ArchiveStep {
	s := &ArchiveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archive step.
func (s *ArchiveStep) Do(ctx context.Context, report *model.AuditReport) error {
	if s.db == nil {
		s.logger.Debug("skipping archive, no database configured")
		return nil
	}

	if err := s.db.SaveAuditReport(ctx, report); err != nil {
		// Non-fatal: the audit itself succeeded, only persistence failed
		s.logger.Warn("failed to archive report",
			"site", report.StartURL,
			"error", err,
		)
		return nil
	}

	s.logger.Info("report archived", "site", report.StartURL)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MaxDepth is the maximum crawl depth.
	MaxDepth int

	// MaxPages is the maximum number of pages to crawl.
	MaxPages int

	// Concurrency caps in-flight fetches during the crawl.
	Concurrency int

	// RequestsPerSecond is the crawl rate throttle.
	RequestsPerSecond float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// IgnorePatterns are URL path substrings to skip during crawling.
	IgnorePatterns []string

	// Client optionally replaces the default HTTP client for the crawl
	// and the analyzers.
	Client *http.Client

	// SkipRobots disables the robots.txt check.
	SkipRobots bool

	// DB, when set, adds an archive step that persists the report.
	DB *database.AuditDB

	// OnProgress is invoked after each crawled page.
	OnProgress func(crawled, queued int)
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxDepth sets the crawl depth for the pipeline.
func WithPipelineMaxDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxDepth = depth
	}
}

// WithPipelineMaxPages sets the maximum pages to crawl.
func WithPipelineMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = maxPages
	}
}

// WithPipelineConcurrency sets the crawl concurrency.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineRate sets the requests-per-second throttle.
func WithPipelineRate(rps float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RequestsPerSecond = rps
	}
}

// WithPipelineTimeout sets the per-request timeout.
func WithPipelineTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = d
	}
}

// WithPipelineUserAgent sets the User-Agent header for HTTP requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineIgnorePatterns sets URL patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineClient sets a custom HTTP client for the crawl and analyzers.
func WithPipelineClient(client *http.Client) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Client = client
	}
}

// WithPipelineSkipRobots disables the robots.txt check.
func WithPipelineSkipRobots(skip bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SkipRobots = skip
	}
}

// WithPipelineDB adds report persistence to the pipeline.
func WithPipelineDB(db *database.AuditDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// WithPipelineProgress sets a per-page progress callback for the crawl.
func WithPipelineProgress(fn func(crawled, queued int)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OnProgress = fn
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for a full site audit.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want all checks
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxDepth, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		MaxDepth:          config.DefaultMaxDepth,
		MaxPages:          config.DefaultMaxPages,
		Concurrency:       config.DefaultConcurrency,
		RequestsPerSecond: config.DefaultRequestsPerSecond,
		Timeout:           config.DefaultTimeout,
		UserAgent:         config.DefaultUserAgent,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	crawlOpts := []CrawlStepOption{
		WithCrawlMaxDepth(cfg.MaxDepth),
		WithCrawlMaxPages(cfg.MaxPages),
		WithCrawlConcurrency(cfg.Concurrency),
		WithCrawlRate(cfg.RequestsPerSecond),
		WithCrawlTimeout(cfg.Timeout),
		WithCrawlUserAgent(cfg.UserAgent),
	}
	if len(cfg.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlIgnorePatterns(cfg.IgnorePatterns))
	}
	if cfg.Client != nil {
		crawlOpts = append(crawlOpts, WithCrawlClient(cfg.Client))
	}
	if cfg.OnProgress != nil {
		crawlOpts = append(crawlOpts, WithCrawlProgress(cfg.OnProgress))
	}

	analyzeOpts := []AnalyzeStepOption{
		WithAnalyzeUserAgent(cfg.UserAgent),
	}
	if cfg.Client != nil {
		analyzeOpts = append(analyzeOpts, WithAnalyzeClient(cfg.Client))
	}

	// Add steps in logical order
	p.AddStep(NewCrawlStep(crawlOpts...))
	if !cfg.SkipRobots {
		p.AddStep(NewAnalyzeStep(analyzer.NewRobotsAnalyzer(), analyzeOpts...))
	}
	p.AddSteps(
		NewAnalyzeStep(analyzer.NewPageAnalyzer(), analyzeOpts...),
		NewAnalyzeStep(analyzer.NewHeaderAnalyzer(), analyzeOpts...),
		NewSummaryStep(),
	)
	if cfg.DB != nil {
		p.AddStep(NewArchiveStep(cfg.DB))
	}

	return p
}
