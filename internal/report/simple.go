package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Plain ASCII formatting rather than ANSI colors: it works in every
// terminal and pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose adds per-page issue listings to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables per-page issue output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFindings(&sb, report)
	if w.verbose {
		w.writePageIssues(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           SEO AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:          %s\n", report.StartURL))
	sb.WriteString(fmt.Sprintf("Audit Date:    %s\n", report.DateAudited.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", report.Duration.Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n", report.PagesCrawled()))

	switch {
	case report.Cancelled:
		sb.WriteString("Status:        CANCELLED (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the site-wide crawl summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AuditReport) {
	summary := report.Summary
	if summary == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SITE SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Healthy pages:             %d\n", summary.TotalPages))
	sb.WriteString(fmt.Sprintf("  Broken links:              %d\n", len(summary.BrokenLinks)))
	sb.WriteString(fmt.Sprintf("  Missing titles:            %d\n", len(summary.MissingTitles)))
	sb.WriteString(fmt.Sprintf("  Missing meta descriptions: %d\n", len(summary.MissingMetaDescriptions)))
	sb.WriteString(fmt.Sprintf("  Missing H1 tags:           %d\n", len(summary.MissingH1s)))
	sb.WriteString(fmt.Sprintf("  Images missing alt text:   %d\n", len(summary.MissingAltText)))
	sb.WriteString(fmt.Sprintf("  Duplicate titles:          %d\n", len(summary.DuplicateTitles)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL ISSUES:              %d\n", summary.IssueCount()))
	sb.WriteString("\n")

	w.writeBrokenLinks(sb, summary)
	w.writeDuplicateTitles(sb, summary)
}

// writeBrokenLinks lists each broken link with its referrer.
func (w *SimpleWriter) writeBrokenLinks(sb *strings.Builder, summary *model.CrawlSummary) {
	if len(summary.BrokenLinks) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("BROKEN LINKS\n\n")
	if len(summary.BrokenLinks) == 0 {
		sb.WriteString("  None\n")
	}
	for _, bl := range summary.BrokenLinks {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", bl.Status, bl.URL))
		sb.WriteString(fmt.Sprintf("      found on: %s\n", bl.FoundOn))
	}
	sb.WriteString("\n")
}

// writeDuplicateTitles lists each shared title and the pages carrying it.
func (w *SimpleWriter) writeDuplicateTitles(sb *strings.Builder, summary *model.CrawlSummary) {
	if len(summary.DuplicateTitles) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("DUPLICATE TITLES\n\n")
	if len(summary.DuplicateTitles) == 0 {
		sb.WriteString("  None\n")
	}
	for _, dup := range summary.DuplicateTitles {
		sb.WriteString(fmt.Sprintf("  %q shared by %d pages:\n", dup.Title, len(dup.Pages)))
		for _, page := range dup.Pages {
			sb.WriteString(fmt.Sprintf("    - %s\n", page))
		}
	}
	sb.WriteString("\n")
}

// writeFindings writes analyzer findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.AuditReport) {
	if len(report.Findings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	severities := []model.Severity{
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of one severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	sb.WriteString(fmt.Sprintf("[%s] %s\n", severityIndicator(severity), severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding.Title))
		if finding.Detail != "" {
			sb.WriteString(fmt.Sprintf("    Detail: %s\n", finding.Detail))
		}
		if finding.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", finding.Location))
		}
	}
	sb.WriteString("\n")
}

// writePageIssues lists every page that carries at least one issue.
func (w *SimpleWriter) writePageIssues(sb *strings.Builder, report *model.AuditReport) {
	pagesWithIssues := 0
	for _, page := range report.Pages {
		if len(page.Issues) > 0 {
			pagesWithIssues++
		}
	}
	if pagesWithIssues == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, page := range report.Pages {
		if len(page.Issues) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s (status %d)\n", page.URL, page.Status))
		for _, issue := range page.Issues {
			sb.WriteString(fmt.Sprintf("    - %s\n", issue))
		}
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seo-cli\n")
	sb.WriteString("https://github.com/SnickerSec/seo-cli\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
