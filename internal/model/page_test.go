package model

import "testing"

// TestPageResultPresenceHelpers tests the empty-string-means-absent convention.
func TestPageResultPresenceHelpers(t *testing.T) {
	t.Parallel()

	page := &PageResult{URL: "https://example.com", Status: 200}
	if page.HasTitle() || page.HasMetaDescription() || page.HasFirstHeading() {
		t.Error("empty fields should report absent")
	}

	page.Title = "Home"
	page.MetaDescription = "A site"
	page.FirstHeading = "Welcome"
	if !page.HasTitle() || !page.HasMetaDescription() || !page.HasFirstHeading() {
		t.Error("non-empty fields should report present")
	}
}

// TestPageResultOK tests 200-status classification.
func TestPageResultOK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		ok     bool
		broken bool
	}{
		{name: "ok page", status: 200, ok: true, broken: false},
		{name: "redirect landed", status: 204, ok: false, broken: false},
		{name: "not found", status: 404, ok: false, broken: true},
		{name: "server error", status: 500, ok: false, broken: true},
		{name: "timeout", status: 408, ok: false, broken: true},
		{name: "unreachable", status: StatusUnreachable, ok: false, broken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &PageResult{Status: tt.status}
			if got := p.OK(); got != tt.ok {
				t.Errorf("OK() = %v, want %v", got, tt.ok)
			}
			if got := p.Broken(); got != tt.broken {
				t.Errorf("Broken() = %v, want %v", got, tt.broken)
			}
		})
	}
}

// TestSeverityString tests severity formatting.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

// TestAuditReportCounts tests finding bookkeeping on the report.
func TestAuditReportCounts(t *testing.T) {
	t.Parallel()

	report := NewAuditReport("https://example.com")
	report.AddFinding(NewFinding("robots_blocked", "Blocked by robots.txt", "", "https://example.com", SeverityHigh))
	report.AddFinding(NewFinding("sitemap_declared", "Sitemap declared", "", "https://example.com/sitemap.xml", SeverityInfo))
	report.Pages = append(report.Pages, &PageResult{
		URL:    "https://example.com",
		Status: 200,
		Issues: []string{"Missing title tag", "Missing H1 tag"},
	})

	if got := report.CountBySeverity(SeverityHigh); got != 1 {
		t.Errorf("CountBySeverity(High) = %d, want 1", got)
	}
	if got := len(report.FindingsBySeverity(SeverityInfo)); got != 1 {
		t.Errorf("FindingsBySeverity(Info) = %d findings, want 1", got)
	}
	if got := report.PagesCrawled(); got != 1 {
		t.Errorf("PagesCrawled() = %d, want 1", got)
	}
	if got := report.TotalIssues(); got != 4 {
		t.Errorf("TotalIssues() = %d, want 4", got)
	}
}

// TestCrawlSummaryIssueCount tests the summary issue tally.
func TestCrawlSummaryIssueCount(t *testing.T) {
	t.Parallel()

	s := &CrawlSummary{
		TotalPages:    3,
		BrokenLinks:   []BrokenLink{{URL: "https://example.com/x", Status: 404, FoundOn: "unknown"}},
		MissingTitles: []string{"https://example.com"},
		DuplicateTitles: []DuplicateTitle{
			{Title: "Same", Pages: []string{"https://example.com/a", "https://example.com/b"}},
		},
	}

	if got := s.IssueCount(); got != 3 {
		t.Errorf("IssueCount() = %d, want 3", got)
	}
}
