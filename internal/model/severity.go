package model

// Severity represents the impact level of an audit finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct ranking impact.
	// Examples: a sitemap declaration, a robots.txt that allows crawling.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: missing cache headers, an over-long meta description.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: missing titles or meta descriptions, duplicate titles.
	SeverityMedium

	// SeverityHigh indicates serious issues that hurt search visibility.
	// Examples: broken internal links, pages blocked by robots.txt,
	// an X-Robots-Tag noindex on the start page.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Finding is a single audit observation outside the per-page crawl issues,
// produced by the robots, headers, and page analyzers.
type Finding struct {
	// Type is a stable machine-readable identifier (e.g. "robots_blocked").
	Type string `json:"type"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Detail carries the observed value or extra context.
	Detail string `json:"detail,omitempty"`

	// Location is the URL the finding applies to.
	Location string `json:"location,omitempty"`

	// Severity is the impact level of this finding.
	Severity Severity `json:"severity"`

	// SeverityText mirrors Severity for JSON consumers.
	SeverityText string `json:"severity_text"`
}

// NewFinding builds a Finding with SeverityText kept in sync.
func NewFinding(typ, title, detail, location string, severity Severity) Finding {
	return Finding{
		Type:         typ,
		Title:        title,
		Detail:       detail,
		Location:     location,
		Severity:     severity,
		SeverityText: severity.String(),
	}
}
