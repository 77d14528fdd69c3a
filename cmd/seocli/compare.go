package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SnickerSec/seo-cli/internal/config"
	"github.com/SnickerSec/seo-cli/internal/database"
	"github.com/SnickerSec/seo-cli/internal/model"
	"github.com/spf13/cobra"
)

// Constants for trend direction and summary messages.
const (
	trendWorsened     = "worsened"
	trendImproved     = "improved"
	trendUnchanged    = "unchanged"
	noIssuesMessage   = "No issues"
	compareDateFormat = "2006-01-02 15:04:05"
)

// NewCompareCmd creates the compare command.
// This command compares audit results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare audit results with historical data",
		Long: `Compare displays differences between the current and previous audit results.

This command retrieves historical audit data from the database and shows:
- New findings that appeared since the last audit
- Resolved findings that are no longer present
- Changes in issue counts per severity level
- Changes in the number of crawled pages

The comparison requires at least two audits in the database for the specified
URL. Use 'seocli crawl' to perform audits and save results.

Examples:
  # Compare latest two audits for a site
  seocli compare https://example.com

  # List all audit history for a site
  seocli compare --list https://example.com

  # Compare with a specific historical audit by ID
  seocli compare --with-audit-id 5 https://example.com

  # Compare audits since a specific date
  seocli compare --since "2026-01-01" https://example.com

  # Output comparison in JSON format
  seocli compare --json https://example.com

  # List all audited sites in the database
  seocli compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified URL")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all audited sites in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-audit-id", "i", 0,
		"Compare with a specific audit by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first audit after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Directory of the audit history database (default: XDG data dir)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no URL)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sites)
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("URL is required (use --list-sites to see available sites)")
		}

		// Reports are keyed by normalized start URL, so normalize the same
		// way the crawl command does.
		site, err = normalizeTarget(args[0])
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-sites flag
	if listSites {
		return listAuditedSites(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAuditHistory(ctx, db, site)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withAuditID, err := cmd.Flags().GetInt64("with-audit-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, site, withAuditID, sinceDate, jsonOutput, markdownOutput)
}

// listAuditedSites lists all sites that have audit records in the database.
func listAuditedSites(ctx context.Context, db *database.AuditDB) error {
	sites, err := db.ListAuditedSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No audited sites found in the database.")
		fmt.Println("\nUse 'seocli crawl <url>' to audit a site.")
		return nil
	}

	fmt.Printf("Audited sites (%d):\n\n", len(sites))
	for _, s := range sites {
		fmt.Printf("  • %s\n", s)
	}
	fmt.Println("\nUse 'seocli compare --list <url>' to see audit history for a site.")

	return nil
}

// listAuditHistory lists all audit records for a specific site.
func listAuditHistory(ctx context.Context, db *database.AuditDB, site string) error {
	reports, err := db.GetAuditHistoryWithMetadata(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No audit history found for %s\n", site)
		fmt.Println("\nUse 'seocli crawl' to audit this site.")
		return nil
	}

	fmt.Printf("Audit history for %s (%d audits):\n\n", site, len(reports))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Pages", "Issue Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		fmt.Printf("  %-6d  %-20s  %-8d  %s\n",
			meta.ID,
			meta.Timestamp.Format(compareDateFormat),
			meta.IssueSummary["pages"],
			formatIssueSummary(meta.IssueSummary),
		)
	}

	fmt.Println("\nUse 'seocli compare <url>' to compare the latest two audits.")
	fmt.Println("Use 'seocli compare --with-audit-id <id> <url>' to compare with a specific audit.")

	return nil
}

// formatIssueSummary formats the issue summary map into a human-readable string.
func formatIssueSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between audit reports.
func runComparison(ctx context.Context, db *database.AuditDB, site string, withAuditID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the audit history
	reports, err := db.GetAuditHistory(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no audit history found for %s", site)
	}

	if len(reports) < 2 && withAuditID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.AuditReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withAuditID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetAuditReportByID(ctx, withAuditID)
		if err != nil {
			return fmt.Errorf("failed to get audit with ID %d: %w", withAuditID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("audit with ID %d not found", withAuditID)
		}
		// Validate that the audit ID belongs to the same site
		if previousReport.StartURL != site {
			return fmt.Errorf("audit ID %d belongs to %s, not %s", withAuditID, previousReport.StartURL, site)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in
		// reverse to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateAudited.After(parsedDate) || r.DateAudited.Equal(parsedDate) {
				previousReport = r
				break
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no audits found since %s", sinceDate)
		}
		// If only one audit matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one audit found since %s; at least 2 audits are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous audit
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two audit reports.
type ComparisonResult struct {
	// Site is the audited start URL.
	Site string `json:"site"`

	// PreviousAudit contains metadata about the previous audit.
	PreviousAudit AuditMetadata `json:"previous_audit"`

	// CurrentAudit contains metadata about the current audit.
	CurrentAudit AuditMetadata `json:"current_audit"`

	// NewFindings contains findings that are new in the current audit.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous audit
	// but not in the current one.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// Trend describes the overall change in SEO health.
	Trend Trend `json:"trend"`
}

// AuditMetadata contains metadata about an audit for comparison display.
type AuditMetadata struct {
	// DateAudited is when the audit was performed.
	DateAudited time.Time `json:"date_audited"`

	// PagesCrawled is the number of pages the audit collected.
	PagesCrawled int `json:"pages_crawled"`

	// PageIssues is the total number of per-page crawl issues.
	PageIssues int `json:"page_issues"`

	// TotalFindings is the total number of analyzer findings.
	TotalFindings int `json:"total_findings"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`
}

// Trend describes the change in SEO health between audits.
type Trend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`

	// PageIssuesDelta is the change in per-page issue count.
	PageIssuesDelta int `json:"page_issues_delta"`

	// PagesDelta is the change in crawled page count. Large swings here
	// can make the per-severity deltas misleading, so it is surfaced.
	PagesDelta int `json:"pages_delta"`
}

// compareReports compares two audit reports and generates a comparison result.
func compareReports(previous, current *model.AuditReport) *ComparisonResult {
	result := &ComparisonResult{
		Site:          current.StartURL,
		PreviousAudit: auditMetadata(previous),
		CurrentAudit:  auditMetadata(current),
	}

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	for _, f := range previous.Findings {
		previousFindings[findingKey(f)] = f
	}
	for _, f := range current.Findings {
		currentFindings[findingKey(f)] = f
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	// Calculate the overall trend
	result.Trend = calculateTrend(result.PreviousAudit, result.CurrentAudit)

	return result
}

// auditMetadata extracts display metadata from a report.
func auditMetadata(report *model.AuditReport) AuditMetadata {
	return AuditMetadata{
		DateAudited:   report.DateAudited,
		PagesCrawled:  report.PagesCrawled(),
		PageIssues:    report.TotalIssues(),
		TotalFindings: len(report.Findings),
		HighCount:     report.CountBySeverity(model.SeverityHigh),
		MediumCount:   report.CountBySeverity(model.SeverityMedium),
		LowCount:      report.CountBySeverity(model.SeverityLow),
		InfoCount:     report.CountBySeverity(model.SeverityInfo),
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Detail + "|" + f.Location
}

// calculateTrend calculates the change in SEO health between two audits.
func calculateTrend(previous, current AuditMetadata) Trend {
	trend := Trend{
		HighDelta:       current.HighCount - previous.HighCount,
		MediumDelta:     current.MediumCount - previous.MediumCount,
		LowDelta:        current.LowCount - previous.LowCount,
		InfoDelta:       current.InfoCount - previous.InfoCount,
		PageIssuesDelta: current.PageIssues - previous.PageIssues,
		PagesDelta:      current.PagesCrawled - previous.PagesCrawled,
	}

	// Determine overall direction based on a weighted score.
	// High severity changes and per-page issues carry more weight;
	// informational findings barely move the needle.
	previousScore := previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount + previous.PageIssues*5
	currentScore := current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount + current.PageIssues*5

	if currentScore < previousScore {
		trend.Direction = trendImproved
	} else if currentScore > previousScore {
		trend.Direction = trendWorsened
	} else {
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Audit Comparison: %s\n\n", result.Site)

	// Trend summary
	fmt.Println("## Summary")
	fmt.Printf("\n**SEO Health:** %s\n\n", formatTrendDirection(result.Trend.Direction))

	// Audit metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousAudit.DateAudited.Format("2006-01-02 15:04"),
		result.CurrentAudit.DateAudited.Format("2006-01-02 15:04"))
	fmt.Printf("| Pages | %d | %d | %s |\n",
		result.PreviousAudit.PagesCrawled,
		result.CurrentAudit.PagesCrawled,
		formatDelta(result.Trend.PagesDelta))
	fmt.Printf("| Page issues | %d | %d | %s |\n",
		result.PreviousAudit.PageIssues,
		result.CurrentAudit.PageIssues,
		formatDelta(result.Trend.PageIssuesDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousAudit.HighCount,
		result.CurrentAudit.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousAudit.MediumCount,
		result.CurrentAudit.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousAudit.LowCount,
		result.CurrentAudit.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousAudit.InfoCount,
		result.CurrentAudit.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Printf("| **Total findings** | **%d** | **%d** | **%s** |\n",
		result.PreviousAudit.TotalFindings,
		result.CurrentAudit.TotalFindings,
		formatDelta(result.CurrentAudit.TotalFindings-result.PreviousAudit.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Detail)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Detail)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Audit Comparison: %s\n", result.Site)
	fmt.Println(strings.Repeat("=", 60))

	// Trend summary
	fmt.Printf("\nSEO Health: %s\n", formatTrendDirection(result.Trend.Direction))

	// Audit dates
	fmt.Printf("\nPrevious audit: %s\n", result.PreviousAudit.DateAudited.Format(compareDateFormat))
	fmt.Printf("Current audit:  %s\n", result.CurrentAudit.DateAudited.Format(compareDateFormat))

	// Summary table
	fmt.Println("\nAudit Summary:")
	fmt.Printf("  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 47))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Pages",
		result.PreviousAudit.PagesCrawled, result.CurrentAudit.PagesCrawled,
		formatDelta(result.Trend.PagesDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Page issues",
		result.PreviousAudit.PageIssues, result.CurrentAudit.PageIssues,
		formatDelta(result.Trend.PageIssuesDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousAudit.HighCount, result.CurrentAudit.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousAudit.MediumCount, result.CurrentAudit.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousAudit.LowCount, result.CurrentAudit.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousAudit.InfoCount, result.CurrentAudit.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 47))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Findings",
		result.PreviousAudit.TotalFindings, result.CurrentAudit.TotalFindings,
		formatDelta(result.CurrentAudit.TotalFindings-result.PreviousAudit.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Detail)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Detail)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer issues)"
	case trendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
