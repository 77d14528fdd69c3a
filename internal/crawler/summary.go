package crawler

import (
	"net/url"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// unknownReferrer is recorded when no crawled page links to a broken URL.
const unknownReferrer = "unknown"

// GenerateSummary reduces a full result set into the site-wide report.
// It is a pure function over its input: it works on externally supplied
// result slices, including empty ones, and never touches the network.
//
// Only 200-status pages contribute to the content buckets (missing titles,
// meta descriptions, H1s, alt text, duplicate titles). Broken-link
// attribution scans the crawled 200-status pages for the first one whose
// outbound links include the broken URL; pages discovered but never
// fetched cannot be attributed and fall back to "unknown".
func GenerateSummary(results []*model.PageResult) *model.CrawlSummary {
	summary := &model.CrawlSummary{
		BrokenLinks:             make([]model.BrokenLink, 0),
		MissingTitles:           make([]string, 0),
		MissingMetaDescriptions: make([]string, 0),
		MissingH1s:              make([]string, 0),
		MissingAltText:          make([]model.MissingAlt, 0),
		DuplicateTitles:         make([]model.DuplicateTitle, 0),
	}

	titlePages := make(map[string][]string)
	titleOrder := make([]string, 0)

	for _, page := range results {
		if page.Broken() {
			summary.BrokenLinks = append(summary.BrokenLinks, model.BrokenLink{
				URL:     page.URL,
				Status:  page.Status,
				FoundOn: findReferrer(results, page.URL),
			})
			continue
		}
		if !page.OK() {
			continue
		}

		summary.TotalPages++

		if !page.HasTitle() {
			summary.MissingTitles = append(summary.MissingTitles, page.URL)
		} else {
			if _, seen := titlePages[page.Title]; !seen {
				titleOrder = append(titleOrder, page.Title)
			}
			titlePages[page.Title] = append(titlePages[page.Title], page.URL)
		}
		if !page.HasMetaDescription() {
			summary.MissingMetaDescriptions = append(summary.MissingMetaDescriptions, page.URL)
		}
		if !page.HasFirstHeading() {
			summary.MissingH1s = append(summary.MissingH1s, page.URL)
		}
		for _, img := range page.Images {
			if img.Alt == "" {
				summary.MissingAltText = append(summary.MissingAltText, model.MissingAlt{
					Page:  page.URL,
					Image: img.Src,
				})
			}
		}
	}

	// Duplicate titles in first-seen order, only when shared by >=2 pages.
	for _, title := range titleOrder {
		if pages := titlePages[title]; len(pages) >= 2 {
			summary.DuplicateTitles = append(summary.DuplicateTitles, model.DuplicateTitle{
				Title: title,
				Pages: pages,
			})
		}
	}

	return summary
}

// findReferrer returns the first 200-status result whose outbound links
// include target, or "unknown" when none does. Outbound links are stored
// as resolved (not canonicalized) URLs, so each is canonicalized before
// comparison against the target's result key.
func findReferrer(results []*model.PageResult, target string) string {
	for _, page := range results {
		if page.URL == target || !page.OK() {
			continue
		}
		for _, link := range page.OutboundLinks {
			if canonicalizeRaw(link) == target {
				return page.URL
			}
		}
	}
	return unknownReferrer
}

// canonicalizeRaw canonicalizes an absolute URL string, returning it
// unchanged when it does not parse.
func canonicalizeRaw(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return canonicalURL(u)
}
