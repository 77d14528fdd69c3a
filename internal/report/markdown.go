package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, designed
// for sharing audits in pull requests and documentation.
//
// The nao1215/markdown library provides type-safe generation of tables,
// lists, alerts, and mermaid charts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeBrokenLinks(md, report)
	w.writeDuplicateTitles(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.StartURL + "`"},
			{"Audit Date", report.DateAudited.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(report.PagesCrawled())},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.AuditReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the site-wide issue summary with a pie chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AuditReport) {
	summary := report.Summary
	if summary == nil {
		return
	}

	md.H2("Site Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Check", "Count"},
		Rows: [][]string{
			{"Healthy pages", strconv.Itoa(summary.TotalPages)},
			{"🔗 Broken links", strconv.Itoa(len(summary.BrokenLinks))},
			{"📄 Missing titles", strconv.Itoa(len(summary.MissingTitles))},
			{"📝 Missing meta descriptions", strconv.Itoa(len(summary.MissingMetaDescriptions))},
			{"🔠 Missing H1 tags", strconv.Itoa(len(summary.MissingH1s))},
			{"🖼️ Images missing alt text", strconv.Itoa(len(summary.MissingAltText))},
			{"♊ Duplicate titles", strconv.Itoa(len(summary.DuplicateTitles))},
			{"**Total issues**", "**" + strconv.Itoa(summary.IssueCount()) + "**"},
		},
	})
	md.PlainText("")

	if summary.IssueCount() > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of the issue distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Distribution"),
		piechart.WithShowData(true),
	)

	if n := len(summary.BrokenLinks); n > 0 {
		chart.LabelAndIntValue("Broken links", uint64(n))
	}
	if n := len(summary.MissingTitles); n > 0 {
		chart.LabelAndIntValue("Missing titles", uint64(n))
	}
	if n := len(summary.MissingMetaDescriptions); n > 0 {
		chart.LabelAndIntValue("Missing meta descriptions", uint64(n))
	}
	if n := len(summary.MissingH1s); n > 0 {
		chart.LabelAndIntValue("Missing H1 tags", uint64(n))
	}
	if n := len(summary.MissingAltText); n > 0 {
		chart.LabelAndIntValue("Missing alt text", uint64(n))
	}
	if n := len(summary.DuplicateTitles); n > 0 {
		chart.LabelAndIntValue("Duplicate titles", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matched to the worst issue class present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch {
	case len(summary.BrokenLinks) > 0:
		md.Warningf(
			"%d broken link(s) found. Broken internal links waste crawl budget and hurt rankings.",
			len(summary.BrokenLinks),
		)
	case len(summary.MissingTitles) > 0 || len(summary.DuplicateTitles) > 0:
		md.Importantf(
			"Title problems found: %d missing, %d duplicated. Every page needs a unique title.",
			len(summary.MissingTitles), len(summary.DuplicateTitles),
		)
	case summary.IssueCount() > 0:
		md.Note("Only minor content issues detected.")
	default:
		md.Tip("No SEO issues detected.")
	}
	md.PlainText("")
}

// writeBrokenLinks writes the broken-link table.
func (w *MarkdownWriter) writeBrokenLinks(md *markdown.Markdown, report *model.AuditReport) {
	if report.Summary == nil || len(report.Summary.BrokenLinks) == 0 {
		return
	}

	md.H2("Broken Links")
	md.PlainText("")

	rows := make([][]string, len(report.Summary.BrokenLinks))
	for i, bl := range report.Summary.BrokenLinks {
		rows[i] = []string{
			truncateString(bl.URL, 60),
			strconv.Itoa(bl.Status),
			truncateString(bl.FoundOn, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDuplicateTitles writes the duplicate-title table.
func (w *MarkdownWriter) writeDuplicateTitles(md *markdown.Markdown, report *model.AuditReport) {
	if report.Summary == nil || len(report.Summary.DuplicateTitles) == 0 {
		return
	}

	md.H2("Duplicate Titles")
	md.PlainText("")

	for _, dup := range report.Summary.DuplicateTitles {
		md.PlainTextf("**%q** is shared by %d pages:", dup.Title, len(dup.Pages))
		md.PlainText("")
		md.BulletList(dup.Pages...)
		md.PlainText("")
	}
}

// writeFindings writes analyzer findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Findings")
	md.PlainText("")

	if len(report.Findings) == 0 {
		md.PlainText("No analyzer findings.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		findings := report.FindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		detail := f.Detail
		if detail == "" {
			detail = "-"
		}
		location := f.Location
		if location == "" {
			location = "-"
		}

		rows[i] = []string{
			f.Title,
			truncateString(detail, 60),
			truncateString(location, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Detail", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seo-cli](https://github.com/SnickerSec/seo-cli)*")
}
