package model

import "time"

// AuditReport is the top-level result of auditing one site.
// It accumulates output from every audit step: the crawl itself, the
// robots.txt check, the response-header check, and the final summary.
//
// Design decision: We use a single aggregate struct rather than returning
// separate values from each step because the audit pipeline threads one
// report through all steps, and report writers want the whole picture.
type AuditReport struct {
	// StartURL is the normalized URL the audit started from.
	StartURL string `json:"start_url"`

	// DateAudited is when the audit ran.
	DateAudited time.Time `json:"date_audited"`

	// Duration is the wall-clock time the audit took.
	Duration time.Duration `json:"duration"`

	// Pages contains one PageResult per visited URL, in completion order.
	Pages []*PageResult `json:"pages,omitempty"`

	// Summary is the site-wide reduction of Pages.
	Summary *CrawlSummary `json:"summary,omitempty"`

	// Findings holds analyzer output (robots, headers, page audit).
	Findings []Finding `json:"findings,omitempty"`

	// Sitemaps lists sitemap URLs declared in robots.txt.
	Sitemaps []string `json:"sitemaps,omitempty"`

	// PerformedSteps records which audit steps ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Cancelled is set when the audit was interrupted before completing.
	Cancelled bool `json:"cancelled,omitempty"`

	// ErrorMessage records a step failure when the pipeline was configured
	// to continue past errors.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewAuditReport creates an empty report for the given start URL.
func NewAuditReport(startURL string) *AuditReport {
	return &AuditReport{
		StartURL:    startURL,
		DateAudited: time.Now(),
	}
}

// AddFinding appends a finding to the report.
func (r *AuditReport) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// FindingsBySeverity returns the findings matching the given severity,
// preserving insertion order.
func (r *AuditReport) FindingsBySeverity(severity Severity) []Finding {
	out := make([]Finding, 0)
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity returns how many findings have the given severity.
func (r *AuditReport) CountBySeverity(severity Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// PagesCrawled returns the number of visited URLs, including broken ones.
func (r *AuditReport) PagesCrawled() int {
	return len(r.Pages)
}

// TotalIssues returns the number of per-page issues plus summary findings.
func (r *AuditReport) TotalIssues() int {
	n := len(r.Findings)
	for _, p := range r.Pages {
		n += len(p.Issues)
	}
	return n
}
