package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// HeaderAnalyzer inspects the start page's response headers for
// directives that affect indexing and crawl efficiency.
//
// This analyzer checks for:
//   - X-Robots-Tag noindex/nofollow (overrides on-page markup)
//   - Missing Cache-Control (wastes crawl budget on unchanged pages)
//   - Uncompressed responses (slower pages rank worse)
type HeaderAnalyzer struct{}

// NewHeaderAnalyzer creates a new HeaderAnalyzer.
func NewHeaderAnalyzer() *HeaderAnalyzer {
	return &HeaderAnalyzer{}
}

// Name returns the analyzer name.
func (a *HeaderAnalyzer) Name() string {
	return "headers"
}

// Analyze fetches the start page and examines its response headers.
func (a *HeaderAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, data.StartURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if data.UserAgent != "" {
		req.Header.Set("User-Agent", data.UserAgent)
	}
	// Ask for compression explicitly; the stdlib transport strips the
	// header when it decompresses transparently, which would hide the
	// Content-Encoding we want to observe.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := data.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch start page: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // headers only

	findings := make([]model.Finding, 0)
	findings = append(findings, a.checkRobotsTag(resp, data.StartURL)...)
	findings = append(findings, a.checkCacheControl(resp, data.StartURL)...)
	findings = append(findings, a.checkCompression(resp, data.StartURL)...)

	return findings, nil
}

// checkRobotsTag flags X-Robots-Tag directives that suppress indexing.
func (a *HeaderAnalyzer) checkRobotsTag(resp *http.Response, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	tag := resp.Header.Get("X-Robots-Tag")
	if tag == "" {
		return findings
	}

	directives := strings.ToLower(tag)
	if strings.Contains(directives, "noindex") {
		findings = append(findings, model.NewFinding(
			"header_noindex",
			"X-Robots-Tag noindex on start page",
			tag,
			pageURL,
			model.SeverityHigh,
		))
	}
	if strings.Contains(directives, "nofollow") {
		findings = append(findings, model.NewFinding(
			"header_nofollow",
			"X-Robots-Tag nofollow on start page",
			tag,
			pageURL,
			model.SeverityMedium,
		))
	}

	return findings
}

// checkCacheControl flags responses without caching directives.
func (a *HeaderAnalyzer) checkCacheControl(resp *http.Response, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if resp.Header.Get("Cache-Control") == "" && resp.Header.Get("Expires") == "" {
		findings = append(findings, model.NewFinding(
			"cache_control_missing",
			"No Cache-Control header",
			"Without caching directives, crawlers refetch unchanged pages and waste crawl budget.",
			pageURL,
			model.SeverityLow,
		))
	}

	return findings
}

// checkCompression flags uncompressed HTML responses.
func (a *HeaderAnalyzer) checkCompression(resp *http.Response, pageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	encoding := resp.Header.Get("Content-Encoding")
	if encoding == "" && !resp.Uncompressed {
		findings = append(findings, model.NewFinding(
			"compression_missing",
			"Response is not compressed",
			"Serving HTML without gzip or brotli slows page loads, a ranking signal.",
			pageURL,
			model.SeverityLow,
		))
	}

	return findings
}
