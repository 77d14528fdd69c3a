package crawler

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// Per-page issue strings. These are stable identifiers that appear in
// reports, so they are constants rather than formatted inline.
const (
	issueMissingTitle    = "Missing title tag"
	issueMissingMeta     = "Missing meta description"
	issueMissingH1       = "Missing H1 tag"
	issueTitleTooLong    = "Title too long (>60 chars)"
	issueMetaTooLong     = "Meta description too long (>160 chars)"
	issueMissingAltLabel = "Image missing alt text: "
)

// Thresholds for title and meta description length checks. Search engines
// truncate display around these sizes.
const (
	maxTitleLength = 60
	maxMetaLength  = 160
)

// maxImageURLLength is how much of an image URL is kept in its issue text.
const maxImageURLLength = 50

// skippedHrefPrefixes are anchor href schemes that never yield a crawlable
// page.
var skippedHrefPrefixes = []string{
	"#", "javascript:", "mailto:", "tel:", "data:", "vbscript:",
}

// ParsePage extracts SEO-relevant facts from a page's HTML and derives its
// issue list. It is a pure function: no network access, no shared state.
// Empty HTML is valid input and produces a result whose extraction fields
// are all absent (which itself generates issues on a 200-status page).
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on the web and gives us a
// proper node tree for first-match queries.
func ParsePage(pageURL, htmlSrc string, status int) *model.PageResult {
	result := &model.PageResult{
		URL:           pageURL,
		Status:        status,
		Issues:        make([]string, 0),
		OutboundLinks: make([]string, 0),
		Images:        make([]model.PageImage, 0),
	}

	base, baseErr := url.Parse(pageURL)

	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err == nil {
		// First-tag-wins for title, h1, and meta description: an empty
		// first tag still claims the slot, so a later non-empty one never
		// hides a missing-content issue.
		var seenTitle, seenHeading, seenMetaDesc bool
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode {
				switch n.Data {
				case "title":
					if !seenTitle {
						seenTitle = true
						result.Title = strings.TrimSpace(nodeText(n))
					}
				case "h1":
					if !seenHeading {
						seenHeading = true
						result.FirstHeading = strings.TrimSpace(nodeText(n))
					}
				case "meta":
					if !seenMetaDesc && strings.EqualFold(getAttr(n, "name"), "description") {
						seenMetaDesc = true
						result.MetaDescription = strings.TrimSpace(getAttr(n, "content"))
					}
				case "a":
					if href := getAttr(n, "href"); href != "" && baseErr == nil {
						if resolved := resolveHref(base, href); resolved != "" {
							result.OutboundLinks = append(result.OutboundLinks, resolved)
						}
					}
				case "img":
					if src := getAttr(n, "src"); src != "" && baseErr == nil {
						if resolved := resolveImageSrc(base, src); resolved != "" {
							result.Images = append(result.Images, model.PageImage{
								Src: resolved,
								Alt: strings.TrimSpace(getAttr(n, "alt")),
							})
						}
					}
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(doc)
	}

	result.Issues = derivePageIssues(result)
	return result
}

// derivePageIssues produces the ordered issue list for an extracted page.
// The checks are independent; every applicable one is emitted.
func derivePageIssues(page *model.PageResult) []string {
	issues := make([]string, 0)

	if !page.HasTitle() {
		issues = append(issues, issueMissingTitle)
	}
	if !page.HasMetaDescription() {
		issues = append(issues, issueMissingMeta)
	}
	if !page.HasFirstHeading() {
		issues = append(issues, issueMissingH1)
	}
	if utf8.RuneCountInString(page.Title) > maxTitleLength {
		issues = append(issues, issueTitleTooLong)
	}
	if utf8.RuneCountInString(page.MetaDescription) > maxMetaLength {
		issues = append(issues, issueMetaTooLong)
	}
	for _, img := range page.Images {
		if img.Alt == "" {
			issues = append(issues, issueMissingAltLabel+truncate(img.Src, maxImageURLLength))
		}
	}

	return issues
}

// resolveHref resolves an anchor href against the page URL.
// Non-navigational schemes and unparseable values are silently skipped.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}
	return resolveRef(base, href)
}

// resolveImageSrc resolves an image src against the page URL. The anchor
// scheme skip-list does not apply here: a data URI is a real image and its
// alt text is still checked.
func resolveImageSrc(base *url.URL, src string) string {
	return resolveRef(base, strings.TrimSpace(src))
}

// resolveRef resolves a reference against base. Empty and unparseable
// values resolve to the empty string and are dropped by the caller.
func resolveRef(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// nodeText collects the text content of a node and its descendants.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
