package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/SnickerSec/seo-cli/internal/audit"
	"github.com/SnickerSec/seo-cli/internal/config"
	"github.com/SnickerSec/seo-cli/internal/database"
	"github.com/SnickerSec/seo-cli/internal/log"
	"github.com/SnickerSec/seo-cli/internal/model"
	"github.com/SnickerSec/seo-cli/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl a website and audit it for SEO issues",
		Long: `Crawl performs a breadth-first crawl of a website and audits every page.

It stays on the start URL's hostname and checks each page for:
- Missing titles, meta descriptions, and H1 headings
- Images without alt text
- Broken links and unreachable pages
- Duplicate titles across pages
- robots.txt rules and sitemap declarations
- Response header problems (noindex, caching, compression)

Examples:
  # Audit a single site
  seocli crawl https://example.com

  # Audit multiple sites concurrently
  seocli crawl https://example.com https://example.org

  # Deeper crawl with a larger page budget
  seocli crawl --depth 5 --limit 500 https://example.com

  # Slow down for a fragile site
  seocli crawl --rate 2 --concurrency 2 https://example.com

  # Output JSON report to a file
  seocli crawl --json -o report.json https://example.com

  # Use a custom configuration file
  seocli crawl -c myconfig.yaml https://example.com

Configuration file (.seocli) example:
  defaults:
    requestsPerSecond: 5
  sites:
    example.com:
      depth: 5
      headers:
        Authorization: "Bearer token"
      ignorePatterns:
        - /search
        - /cart`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("limit", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent fetches per crawl")
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Maximum requests per second per crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().Bool("skip-robots", false,
		"Skip the robots.txt check")

	// Batch auditing flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits when multiple URLs are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seocli in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output CSV report, one row per page (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Archive flags
	cmd.Flags().String("db-dir", "",
		"Directory for the audit history database (default: XDG data dir)")
	cmd.Flags().Bool("no-archive", false,
		"Do not save audit results to the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with sensitive-value redaction
	logger := log.NewRedactLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.SkipRobots, err = cmd.Flags().GetBool("skip-robots")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Archive to the XDG data directory unless disabled
	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.SaveToDB = !noArchive

	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (start URLs)
	cfg.Targets = args

	return cfg, nil
}

// runAudit executes the audit for every target.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting audit",
		"targets", cfg.Targets,
		"depth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Normalize and validate all start URLs before any network activity
	for i, target := range cfg.Targets {
		normalized, err := normalizeTarget(target)
		if err != nil {
			return fmt.Errorf("invalid start URL %q: %w", target, err)
		}
		cfg.Targets[i] = normalized
	}

	// Open database connection if archiving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel auditing if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchAudit(ctx, cfg, db, logger)
	}

	// Single target or sequential auditing
	return runSequentialAudit(ctx, cfg, db, logger)
}

// normalizeTarget validates a start URL and defaults a missing scheme to
// https. The crawler re-validates, but failing here gives a better message.
func normalizeTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return target, nil
}

// runSequentialAudit audits targets one at a time.
func runSequentialAudit(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Create pipeline with site-specific options
		p := createPipelineForTarget(logger, cfg, db, target)

		auditReport := model.NewAuditReport(target)

		fmt.Printf("Auditing %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, auditReport); err != nil {
			logger.Error("audit failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, auditReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchAudit audits multiple targets concurrently using BatchProcessor.
func runBatchAudit(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch audit of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (headers, depth) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := audit.NewBatchProcessor(
		func() *audit.Pipeline {
			// Note: For batch processing, we use default site config.
			// Site-specific configs would require per-target pipeline creation.
			return createPipelineForTarget(logger, cfg, db, "")
		},
		audit.WithBatchConcurrency(cfg.BatchSize),
		audit.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(auditReport *model.AuditReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Audit completed: %s\n", index+1, len(cfg.Targets), auditReport.StartURL)

		// Generate and output report
		if err := outputReport(cfg, auditReport); err != nil {
			logger.Error("report failed", "target", auditReport.StartURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch audit completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForTarget creates a pipeline for one start URL, merging
// any per-site config over the global settings. An empty target applies
// only the defaults section of the config file.
func createPipelineForTarget(logger *slog.Logger, cfg *config.Config, db *database.AuditDB, target string) *audit.Pipeline {
	siteConfig := getSiteConfig(cfg, target)

	pipelineOpts := []audit.Option{
		audit.WithLogger(logger),
		audit.WithContinueOnError(true),
	}

	// Site-specific values override globals
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}
	rate := cfg.RequestsPerSecond
	if siteConfig.RequestsPerSecond > 0 {
		rate = siteConfig.RequestsPerSecond
	}
	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	configOpts := []audit.DefaultPipelineOption{
		audit.WithPipelineMaxDepth(maxDepth),
		audit.WithPipelineMaxPages(maxPages),
		audit.WithPipelineConcurrency(cfg.Concurrency),
		audit.WithPipelineRate(rate),
		audit.WithPipelineTimeout(cfg.Timeout),
		audit.WithPipelineUserAgent(userAgent),
		audit.WithPipelineSkipRobots(cfg.SkipRobots),
	}

	// Live crawl progress on stderr in verbose mode
	if cfg.Verbose {
		configOpts = append(configOpts, audit.WithPipelineProgress(func(crawled, queued int) {
			fmt.Fprintf(os.Stderr, "\rcrawled %d pages, %d queued", crawled, queued)
		}))
	}

	// Add URL pattern filtering if configured
	if len(siteConfig.IgnorePatterns) > 0 {
		configOpts = append(configOpts, audit.WithPipelineIgnorePatterns(siteConfig.IgnorePatterns))
	}

	// Custom headers need a header-injecting HTTP client
	if len(siteConfig.Headers) > 0 {
		configOpts = append(configOpts, audit.WithPipelineClient(newHeaderClient(siteConfig.Headers, cfg.Timeout)))
	}

	if db != nil {
		configOpts = append(configOpts, audit.WithPipelineDB(db))
	}

	return audit.DefaultPipeline(pipelineOpts, configOpts...)
}

// getSiteConfig returns the merged site configuration for a target URL.
// Lookup is by bare hostname; falls back to the defaults section.
func getSiteConfig(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return cfg.SiteConfigs.Defaults
	}

	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// headerTransport injects fixed headers into every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}

// newHeaderClient builds an HTTP client that adds the given headers to
// every request, used to carry per-site auth headers from the config file.
func newHeaderClient(headers map[string]string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: headers,
		},
	}
}

// outputReport outputs the audit report in the requested format.
func outputReport(cfg *config.Config, auditReport *model.AuditReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may carry auth headers via findings locations.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// Pick the writer for the requested format
	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	case cfg.CSVReport:
		w = report.NewCSVWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(auditReport)
	return err
}
