package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// Finding types produced by the robots analyzer. The audit pipeline pulls
// sitemap URLs out of FindingSitemap findings for the report.
const (
	FindingRobotsMissing = "robots_missing"
	FindingRobotsBlocked = "robots_blocked"
	FindingSitemap       = "sitemap_declared"
)

// RobotsAnalyzer fetches the site's robots.txt, reports crawled pages the
// site disallows for the configured user agent, and surfaces declared
// sitemaps.
//
// Disallowed-but-crawled pages matter for an audit: content the operator
// blocked from search engines does not rank no matter how healthy its
// markup is.
type RobotsAnalyzer struct{}

// NewRobotsAnalyzer creates a new RobotsAnalyzer.
func NewRobotsAnalyzer() *RobotsAnalyzer {
	return &RobotsAnalyzer{}
}

// Name returns the analyzer name.
func (a *RobotsAnalyzer) Name() string {
	return "robots"
}

// Analyze fetches and evaluates robots.txt for the start URL's origin.
func (a *RobotsAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	origin, err := url.Parse(data.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", data.StartURL, err)
	}

	robotsURL := origin.Scheme + "://" + origin.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if data.UserAgent != "" {
		req.Header.Set("User-Agent", data.UserAgent)
	}

	resp, err := data.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	findings := make([]model.Finding, 0)

	if resp.StatusCode == http.StatusNotFound {
		findings = append(findings, model.NewFinding(
			FindingRobotsMissing,
			"No robots.txt",
			"The site serves no robots.txt. Crawlers assume everything is allowed.",
			robotsURL,
			model.SeverityInfo,
		))
		return findings, nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	for _, sitemap := range robots.Sitemaps {
		findings = append(findings, model.NewFinding(
			FindingSitemap,
			"Sitemap declared",
			sitemap,
			robotsURL,
			model.SeverityInfo,
		))
	}

	group := robots.FindGroup(data.UserAgent)
	for _, page := range data.Pages {
		u, err := url.Parse(page.URL)
		if err != nil {
			continue
		}
		if !group.Test(u.Path) {
			findings = append(findings, model.NewFinding(
				FindingRobotsBlocked,
				"Crawled page is blocked by robots.txt",
				"Blocked pages are invisible to search engines regardless of their content.",
				page.URL,
				model.SeverityHigh,
			))
		}
	}

	return findings, nil
}

// SitemapsFromFindings extracts the sitemap URLs recorded by Analyze.
func SitemapsFromFindings(findings []model.Finding) []string {
	sitemaps := make([]string, 0)
	for _, f := range findings {
		if f.Type == FindingSitemap {
			sitemaps = append(sitemaps, f.Detail)
		}
	}
	return sitemaps
}
