package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// PageAnalyzer inspects the start page's markup for SEO signals the
// crawl-wide checks don't cover: canonical links, meta robots directives,
// Open Graph tags, mobile viewport, language attribute, heading
// structure, and structured data.
//
// It refetches the start page and parses it with goquery so CSS
// selectors stay readable; the crawl's own parser only retains the
// fields every page needs.
type PageAnalyzer struct{}

// NewPageAnalyzer creates a new PageAnalyzer.
func NewPageAnalyzer() *PageAnalyzer {
	return &PageAnalyzer{}
}

// Name returns the analyzer name.
func (a *PageAnalyzer) Name() string {
	return "page"
}

// Analyze fetches the start page and checks its markup.
func (a *PageAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, data.StartURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if data.UserAgent != "" {
		req.Header.Set("User-Agent", data.UserAgent)
	}

	resp, err := data.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch start page: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start page: %w", err)
	}

	findings := make([]model.Finding, 0)
	findings = append(findings, a.checkCanonical(doc, data.StartURL)...)
	findings = append(findings, a.checkMetaRobots(doc, data.StartURL)...)
	findings = append(findings, a.checkOpenGraph(doc, data.StartURL)...)
	findings = append(findings, a.checkViewport(doc, data.StartURL)...)
	findings = append(findings, a.checkLang(doc, data.StartURL)...)
	findings = append(findings, a.checkHeadings(doc, data.StartURL)...)
	findings = append(findings, a.checkStructuredData(doc, data.StartURL)...)

	return findings, nil
}

// checkCanonical verifies the canonical link target.
func (a *PageAnalyzer) checkCanonical(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	canonical, exists := doc.Find("link[rel='canonical']").First().Attr("href")
	if !exists || strings.TrimSpace(canonical) == "" {
		findings = append(findings, model.NewFinding(
			"canonical_missing",
			"Missing canonical link",
			"No <link rel=\"canonical\"> found. Canonical links prevent duplicate-content dilution.",
			pageURL,
			model.SeverityLow,
		))
		return findings
	}

	canonicalURL, err := url.Parse(strings.TrimSpace(canonical))
	pageParsed, perr := url.Parse(pageURL)
	if err == nil && perr == nil && canonicalURL.IsAbs() &&
		!strings.EqualFold(canonicalURL.Hostname(), pageParsed.Hostname()) {
		findings = append(findings, model.NewFinding(
			"canonical_cross_host",
			"Canonical link points to a different host",
			canonical,
			pageURL,
			model.SeverityMedium,
		))
	}

	return findings
}

// checkMetaRobots flags noindex and nofollow directives.
func (a *PageAnalyzer) checkMetaRobots(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	content, exists := doc.Find("meta[name='robots']").First().Attr("content")
	if !exists {
		return findings
	}

	directives := strings.ToLower(content)
	if strings.Contains(directives, "noindex") {
		findings = append(findings, model.NewFinding(
			"meta_noindex",
			"Start page has meta robots noindex",
			content,
			pageURL,
			model.SeverityHigh,
		))
	}
	if strings.Contains(directives, "nofollow") {
		findings = append(findings, model.NewFinding(
			"meta_nofollow",
			"Start page has meta robots nofollow",
			content,
			pageURL,
			model.SeverityMedium,
		))
	}

	return findings
}

// checkOpenGraph verifies the social sharing tags.
func (a *PageAnalyzer) checkOpenGraph(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	missing := make([]string, 0, 2)
	for _, property := range []string{"og:title", "og:description"} {
		selector := fmt.Sprintf("meta[property='%s']", property)
		if content, ok := doc.Find(selector).First().Attr("content"); !ok || strings.TrimSpace(content) == "" {
			missing = append(missing, property)
		}
	}

	if len(missing) > 0 {
		findings = append(findings, model.NewFinding(
			"og_missing",
			"Missing Open Graph tags",
			strings.Join(missing, ", "),
			pageURL,
			model.SeverityLow,
		))
	}

	return findings
}

// checkViewport flags pages without a mobile viewport.
func (a *PageAnalyzer) checkViewport(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if doc.Find("meta[name='viewport']").Length() == 0 {
		findings = append(findings, model.NewFinding(
			"viewport_missing",
			"Missing viewport meta tag",
			"Pages without a viewport tag render poorly on mobile, which affects mobile-first indexing.",
			pageURL,
			model.SeverityMedium,
		))
	}

	return findings
}

// checkLang flags a missing html lang attribute.
func (a *PageAnalyzer) checkLang(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if lang, ok := doc.Find("html").First().Attr("lang"); !ok || strings.TrimSpace(lang) == "" {
		findings = append(findings, model.NewFinding(
			"lang_missing",
			"Missing html lang attribute",
			"The lang attribute helps search engines serve the page to the right audience.",
			pageURL,
			model.SeverityLow,
		))
	}

	return findings
}

// checkHeadings flags multiple H1 elements.
func (a *PageAnalyzer) checkHeadings(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if n := doc.Find("h1").Length(); n > 1 {
		findings = append(findings, model.NewFinding(
			"multiple_h1",
			"Multiple H1 tags",
			fmt.Sprintf("%d H1 elements found; one H1 per page keeps the topic unambiguous.", n),
			pageURL,
			model.SeverityLow,
		))
	}

	return findings
}

// checkStructuredData records JSON-LD presence as an informational finding.
func (a *PageAnalyzer) checkStructuredData(doc *goquery.Document, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if n := doc.Find("script[type='application/ld+json']").Length(); n > 0 {
		findings = append(findings, model.NewFinding(
			"structured_data",
			"Structured data detected",
			fmt.Sprintf("%d JSON-LD block(s) found.", n),
			pageURL,
			model.SeverityInfo,
		))
	}

	return findings
}
