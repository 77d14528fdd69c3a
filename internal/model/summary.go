package model

// CrawlSummary is a site-wide reduction of every PageResult from one crawl.
// It is derived in a single pass after crawling ends and is read-only.
type CrawlSummary struct {
	// TotalPages is the number of pages that responded with HTTP 200.
	TotalPages int `json:"total_pages"`

	// BrokenLinks lists every crawled URL with an error-class status or
	// that was unreachable, attributed to a referring page when one can
	// be found among the crawled results.
	BrokenLinks []BrokenLink `json:"broken_links,omitempty"`

	// MissingTitles lists 200-status pages without a <title>.
	MissingTitles []string `json:"missing_titles,omitempty"`

	// MissingMetaDescriptions lists 200-status pages without a meta description.
	MissingMetaDescriptions []string `json:"missing_meta_descriptions,omitempty"`

	// MissingH1s lists 200-status pages without an <h1>.
	MissingH1s []string `json:"missing_h1s,omitempty"`

	// MissingAltText lists images without alt text on 200-status pages.
	MissingAltText []MissingAlt `json:"missing_alt_text,omitempty"`

	// DuplicateTitles groups pages that share the same <title>.
	// Only titles used by two or more pages appear here.
	DuplicateTitles []DuplicateTitle `json:"duplicate_titles,omitempty"`
}

// BrokenLink describes one broken or unreachable URL found during a crawl.
type BrokenLink struct {
	// URL is the broken page's normalized URL.
	URL string `json:"url"`

	// Status is the HTTP status, or StatusUnreachable for fetch failures.
	Status int `json:"status"`

	// FoundOn is the first crawled 200-status page whose outbound links
	// include URL, or "unknown" when no crawled page references it.
	//
	// Attribution can only see pages that made it into the result set
	// with populated links; pages discovered but never fetched (budget
	// reached) always fall back to "unknown".
	FoundOn string `json:"found_on"`
}

// MissingAlt identifies one image lacking alt text.
type MissingAlt struct {
	// Page is the URL of the page containing the image.
	Page string `json:"page"`

	// Image is the image's absolute source URL.
	Image string `json:"image"`
}

// DuplicateTitle groups the pages sharing one title.
type DuplicateTitle struct {
	// Title is the shared <title> text.
	Title string `json:"title"`

	// Pages lists the URLs using this title, in first-seen order.
	Pages []string `json:"pages"`
}

// IssueCount returns the total number of site-wide findings in the summary.
func (s *CrawlSummary) IssueCount() int {
	return len(s.BrokenLinks) +
		len(s.MissingTitles) +
		len(s.MissingMetaDescriptions) +
		len(s.MissingH1s) +
		len(s.MissingAltText) +
		len(s.DuplicateTitles)
}
