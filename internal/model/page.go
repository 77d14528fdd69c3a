package model

// CrawlTarget is a single item in the crawl queue.
// It is created when a link is discovered, consumed exactly once when
// dequeued, and never mutated afterwards.
type CrawlTarget struct {
	// URL is the normalized absolute URL to fetch.
	URL string `json:"url"`

	// Depth is the link distance from the start URL. The start URL has
	// depth 0; links discovered on it have depth 1, and so on.
	Depth int `json:"depth"`

	// FoundOnURL is the page on which this URL was discovered.
	// The seed target uses the sentinel value "start".
	FoundOnURL string `json:"found_on_url"`
}

// StatusUnreachable is the HTTP status recorded for pages that could not
// be fetched at all (DNS failure, connection refused, retries exhausted).
// It is distinct from any real HTTP status, including timeouts (408).
const StatusUnreachable = 0

// IssueUnreachable is the single issue attached to a synthetic PageResult
// created for an unreachable page.
const IssueUnreachable = "Failed to fetch page"

// PageResult holds everything the crawler learned about one URL.
// Exactly one PageResult is produced per distinct visited URL, and it is
// immutable after creation.
//
// Design decision: Optional text fields (Title, MetaDescription,
// FirstHeading) use the empty string to mean "absent". The extraction
// rules trim whitespace first, so a whitespace-only tag is treated the
// same as a missing one. Presence helpers (HasTitle etc.) keep that
// convention in one place.
type PageResult struct {
	// URL is the normalized URL this result was produced for.
	URL string `json:"url"`

	// Status is the HTTP response status. StatusUnreachable (0) means the
	// page could not be fetched; 408 means the request timed out.
	Status int `json:"status"`

	// Title is the trimmed text of the first <title> tag.
	Title string `json:"title,omitempty"`

	// MetaDescription is the trimmed content attribute of
	// <meta name="description">.
	MetaDescription string `json:"meta_description,omitempty"`

	// FirstHeading is the trimmed text of the first <h1> tag.
	FirstHeading string `json:"first_heading,omitempty"`

	// Issues lists the SEO problems detected on this page, in the order
	// the checks run. Deterministic ordering keeps reports stable.
	Issues []string `json:"issues,omitempty"`

	// OutboundLinks contains every anchor href on the page, resolved to
	// an absolute URL. External links appear here even though they are
	// never crawled.
	OutboundLinks []string `json:"outbound_links,omitempty"`

	// Images contains every <img> on the page with its alt text.
	Images []PageImage `json:"images,omitempty"`
}

// PageImage is an image reference found on a page.
type PageImage struct {
	// Src is the image source resolved to an absolute URL.
	Src string `json:"src"`

	// Alt is the trimmed alt attribute. Empty means the image has no
	// usable alt text.
	Alt string `json:"alt,omitempty"`
}

// HasTitle reports whether the page had a non-empty <title>.
func (p *PageResult) HasTitle() bool { return p.Title != "" }

// HasMetaDescription reports whether the page had a non-empty meta description.
func (p *PageResult) HasMetaDescription() bool { return p.MetaDescription != "" }

// HasFirstHeading reports whether the page had a non-empty <h1>.
func (p *PageResult) HasFirstHeading() bool { return p.FirstHeading != "" }

// OK reports whether the page responded with HTTP 200.
// Only OK pages contribute to content-quality summary buckets.
func (p *PageResult) OK() bool { return p.Status == 200 }

// Broken reports whether this result should be counted as a broken link:
// either an error-class HTTP status or an unreachable page.
func (p *PageResult) Broken() bool {
	return p.Status >= 400 || p.Status == StatusUnreachable
}
