package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These match the CLI flag defaults so a
// bare `seocli crawl <url>` behaves the same as a zero-value config that
// went through NewConfig.
const (
	// DefaultTimeout is the per-request HTTP timeout. Ten seconds covers
	// slow origins without letting a single stuck page stall the crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxDepth is the maximum link distance from the start URL.
	// Depth 0 means only the start page itself is fetched.
	DefaultMaxDepth = 3

	// DefaultMaxPages caps the number of pages collected per crawl.
	// Users can raise this via the --limit CLI flag.
	DefaultMaxPages = 100

	// DefaultConcurrency is the number of in-flight fetches per crawl.
	DefaultConcurrency = 5

	// DefaultRequestsPerSecond throttles the crawl independently of the
	// concurrency cap. Ten requests per second is polite for most sites.
	DefaultRequestsPerSecond = 10.0

	// DefaultBatchSize is the number of concurrent audits when multiple
	// start URLs are given.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "seocli"

	// DefaultUserAgent identifies the crawler in HTTP requests so site
	// operators can recognize audit traffic in their logs.
	DefaultUserAgent = "seo-cli/1.0 (+https://github.com/SnickerSec/seo-cli)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB is sufficient for HTML pages while bounding memory use.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for an audit run.
// It is populated from CLI flags plus an optional config file and passed
// through the application by value injection rather than global state.
//
// Design decision: a single flat struct instead of nested sub-structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Targets is the list of start URLs to audit. Must contain at least
	// one absolute http(s) URL.
	Targets []string

	// Timeout bounds each individual HTTP request, not the whole crawl.
	Timeout time.Duration

	// MaxDepth is the maximum link distance followed from the start URL.
	MaxDepth int

	// MaxPages caps how many pages a single crawl may collect.
	MaxPages int

	// Concurrency caps the number of fetches in flight within one crawl.
	Concurrency int

	// RequestsPerSecond is the token-bucket refill rate shared by all
	// fetches of one crawl. Zero means DefaultRequestsPerSecond.
	RequestsPerSecond float64

	// BatchSize is the number of concurrent audits when multiple start
	// URLs are given on the command line.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seocli in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted per start URL.
	SiteConfigs *File

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport and CSVReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown report output.
	// Mutually exclusive with JSONReport and CSVReport.
	MarkdownReport bool

	// CSVReport selects CSV report output (one row per crawled page).
	// Mutually exclusive with JSONReport and MarkdownReport.
	CSVReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written there instead of stdout.
	// Missing parent directories are created automatically.
	ReportFile string

	// DBDir is the directory for the SQLite audit history database.
	// When set, audit results are archived for later comparison.
	// When empty, results are not persisted.
	DBDir string

	// SaveToDB indicates whether to archive audit results.
	// Set to true automatically when DBDir is configured.
	SaveToDB bool

	// SkipRobots disables the robots.txt check that normally runs before
	// a crawl. Pages disallowed for the configured user agent are still
	// reported, just not skipped.
	SkipRobots bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero means the default.
	MaxBodySize int64
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would misconfigure the crawl.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxDepth:          DefaultMaxDepth,
		MaxPages:          DefaultMaxPages,
		Concurrency:       DefaultConcurrency,
		RequestsPerSecond: DefaultRequestsPerSecond,
		BatchSize:         DefaultBatchSize,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for seocli.
// On Linux: ~/.local/share/seocli
// On macOS: ~/Library/Application Support/seocli
// On Windows: %LOCALAPPDATA%\seocli
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seocli.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seocli.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns a sentinel error for the
// first invalid field found. Called once after CLI parsing, before any
// network activity.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// At most one report format may be selected.
	formats := 0
	for _, on := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if on {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
