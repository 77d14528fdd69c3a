package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SnickerSec/seo-cli/internal/analyzer"
	"github.com/SnickerSec/seo-cli/internal/config"
	"github.com/SnickerSec/seo-cli/internal/crawler"
	"github.com/SnickerSec/seo-cli/internal/log"
	"github.com/SnickerSec/seo-cli/internal/model"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command, a single-page audit that
// fetches one URL and reports its SEO facts without crawling.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url]",
		Short: "Analyze a single page without crawling",
		Long: `Analyze fetches one URL and reports its SEO facts and issues.

Unlike crawl, analyze never follows links. Use it to spot-check a page
after a fix, or to inspect a page on a site too large to crawl.

Examples:
  # Check one page
  seocli analyze https://example.com/pricing

  # Machine-readable output
  seocli analyze --json https://example.com/pricing`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with the request")
	cmd.Flags().BoolP("json", "j", false,
		"Output the page result as JSON")

	return cmd
}

// pageAnalysis is the JSON shape of a single-page analysis.
type pageAnalysis struct {
	Page     *model.PageResult `json:"page"`
	Findings []model.Finding   `json:"findings,omitempty"`
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	target, err := normalizeTarget(args[0])
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", args[0], err)
	}

	logger := log.NewRedactLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	analysis, err := analyzePage(ctx, target, timeout, userAgent, logger)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printPageAnalysis(cmd.OutOrStdout(), analysis)
	return nil
}

// analyzePage fetches one URL and runs the page analyzer over it.
func analyzePage(ctx context.Context, target string, timeout time.Duration, userAgent string, logger *slog.Logger) (*pageAnalysis, error) {
	client := &http.Client{Timeout: timeout}
	fetcher := crawler.NewFetcher(client, crawler.NewLimiter(config.DefaultRequestsPerSecond),
		crawler.WithUserAgent(userAgent),
		crawler.WithFetchLogger(logger),
	)

	result, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	page := crawler.ParsePage(target, result.HTML, result.Status)

	analysis := &pageAnalysis{Page: page}

	data := &analyzer.AnalysisData{
		StartURL:  target,
		Pages:     []*model.PageResult{page},
		UserAgent: userAgent,
		Client:    client,
	}
	findings, err := analyzer.NewPageAnalyzer().Analyze(ctx, data)
	if err != nil {
		logger.Warn("page analyzer failed", "url", target, "error", err)
	} else {
		analysis.Findings = findings
	}

	return analysis, nil
}

// printPageAnalysis writes a human-readable single-page report.
func printPageAnalysis(out io.Writer, analysis *pageAnalysis) {
	page := analysis.Page

	fmt.Fprintf(out, "URL:              %s\n", page.URL)
	fmt.Fprintf(out, "Status:           %d\n", page.Status)
	fmt.Fprintf(out, "Title:            %s\n", valueOrNone(page.Title))
	fmt.Fprintf(out, "Meta description: %s\n", valueOrNone(page.MetaDescription))
	fmt.Fprintf(out, "First H1:         %s\n", valueOrNone(page.FirstHeading))
	fmt.Fprintf(out, "Links:            %d\n", len(page.OutboundLinks))
	fmt.Fprintf(out, "Images:           %d\n", len(page.Images))

	if len(page.Issues) > 0 {
		fmt.Fprintf(out, "\nIssues (%d):\n", len(page.Issues))
		for _, issue := range page.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	} else {
		fmt.Fprintln(out, "\nNo issues found.")
	}

	if len(analysis.Findings) > 0 {
		fmt.Fprintf(out, "\nFindings (%d):\n", len(analysis.Findings))
		for _, f := range analysis.Findings {
			line := fmt.Sprintf("  [%s] %s", f.Severity, f.Title)
			if f.Detail != "" {
				line += ": " + f.Detail
			}
			fmt.Fprintln(out, line)
		}
	}
}

// valueOrNone renders optional page text, marking absence explicitly.
func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
