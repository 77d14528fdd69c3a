package crawler

import (
	"strings"
	"testing"
)

// TestParsePageExtraction tests field extraction from well-formed HTML.
func TestParsePageExtraction(t *testing.T) {
	t.Parallel()

	src := `<html><head>
		<title>  Welcome Home  </title>
		<meta name="description" content=" A fine site. ">
	</head><body>
		<h1>Hello <em>world</em></h1>
		<a href="/about">About</a>
		<a href="https://other.example.org/page">Elsewhere</a>
		<img src="/logo.png" alt=" The logo ">
	</body></html>`

	page := ParsePage("https://example.com/index", src, 200)

	if page.Title != "Welcome Home" {
		t.Errorf("Title = %q, want %q", page.Title, "Welcome Home")
	}
	if page.MetaDescription != "A fine site." {
		t.Errorf("MetaDescription = %q, want %q", page.MetaDescription, "A fine site.")
	}
	if page.FirstHeading != "Hello world" {
		t.Errorf("FirstHeading = %q, want %q", page.FirstHeading, "Hello world")
	}
	if len(page.OutboundLinks) != 2 {
		t.Fatalf("got %d outbound links, want 2: %v", len(page.OutboundLinks), page.OutboundLinks)
	}
	if page.OutboundLinks[0] != "https://example.com/about" {
		t.Errorf("relative link resolved to %q", page.OutboundLinks[0])
	}
	if page.OutboundLinks[1] != "https://other.example.org/page" {
		t.Errorf("absolute link changed to %q", page.OutboundLinks[1])
	}
	if len(page.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(page.Images))
	}
	if page.Images[0].Src != "https://example.com/logo.png" || page.Images[0].Alt != "The logo" {
		t.Errorf("image = %+v", page.Images[0])
	}
	if len(page.Issues) != 0 {
		t.Errorf("healthy page has issues: %v", page.Issues)
	}
}

// TestParsePageSkipsNonNavigationalHrefs tests the href scheme skip-list.
func TestParsePageSkipsNonNavigationalHrefs(t *testing.T) {
	t.Parallel()

	src := `<html><body>
		<a href="#section">Fragment</a>
		<a href="javascript:void(0)">JS</a>
		<a href="mailto:a@b.c">Mail</a>
		<a href="tel:+123">Phone</a>
		<a href="data:text/plain,hi">Data</a>
		<a href="vbscript:beep">VB</a>
		<a href="/real">Real</a>
	</body></html>`

	page := ParsePage("https://example.com", src, 200)
	if len(page.OutboundLinks) != 1 {
		t.Fatalf("got %d links, want 1: %v", len(page.OutboundLinks), page.OutboundLinks)
	}
	if !strings.HasSuffix(page.OutboundLinks[0], "/real") {
		t.Errorf("kept wrong link %q", page.OutboundLinks[0])
	}
}

// TestParsePageFirstMatchWins tests that only the first title/h1 count.
func TestParsePageFirstMatchWins(t *testing.T) {
	t.Parallel()

	src := `<html><head><title>First</title><title>Second</title></head>
	<body><h1>One</h1><h1>Two</h1></body></html>`

	page := ParsePage("https://example.com", src, 200)
	if page.Title != "First" {
		t.Errorf("Title = %q, want %q", page.Title, "First")
	}
	if page.FirstHeading != "One" {
		t.Errorf("FirstHeading = %q, want %q", page.FirstHeading, "One")
	}
}

// TestParsePageKeepsDataURIImages tests that inline images are extracted
// and alt-checked like any other image.
func TestParsePageKeepsDataURIImages(t *testing.T) {
	t.Parallel()

	src := `<html><head><title>T</title>
		<meta name="description" content="D"></head>
		<body><h1>H</h1><img src="data:image/gif;base64,R0lGODlhAQABAAAAACw="></body></html>`

	page := ParsePage("https://example.com", src, 200)
	if len(page.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(page.Images))
	}
	if !strings.HasPrefix(page.Images[0].Src, "data:image/gif") {
		t.Errorf("image src = %q", page.Images[0].Src)
	}
	if len(page.Issues) != 1 || !strings.HasPrefix(page.Issues[0], issueMissingAltLabel) {
		t.Errorf("issues = %v, want one alt-text issue", page.Issues)
	}
}

// TestParsePageEmptyFirstTagCountsAsMissing tests that an empty first
// title/h1/meta description is not displaced by a later non-empty one.
func TestParsePageEmptyFirstTagCountsAsMissing(t *testing.T) {
	t.Parallel()

	src := `<html><head><title></title><title>Second</title>
		<meta name="description" content="">
		<meta name="description" content="later">
	</head><body><h1> </h1><h1>Two</h1></body></html>`

	page := ParsePage("https://example.com", src, 200)
	if page.Title != "" {
		t.Errorf("Title = %q, want empty from the first tag", page.Title)
	}
	if page.MetaDescription != "" {
		t.Errorf("MetaDescription = %q, want empty from the first tag", page.MetaDescription)
	}
	if page.FirstHeading != "" {
		t.Errorf("FirstHeading = %q, want empty from the first tag", page.FirstHeading)
	}

	want := []string{issueMissingTitle, issueMissingMeta, issueMissingH1}
	if len(page.Issues) != len(want) {
		t.Fatalf("issues = %v, want %v", page.Issues, want)
	}
}

// TestParsePageIssueDerivation tests the per-page issue checks.
func TestParsePageIssueDerivation(t *testing.T) {
	t.Parallel()

	t.Run("empty html emits all absence issues", func(t *testing.T) {
		t.Parallel()

		page := ParsePage("https://example.com", "", 200)
		want := []string{issueMissingTitle, issueMissingMeta, issueMissingH1}
		if len(page.Issues) != len(want) {
			t.Fatalf("issues = %v, want %v", page.Issues, want)
		}
		for i, issue := range want {
			if page.Issues[i] != issue {
				t.Errorf("issue[%d] = %q, want %q", i, page.Issues[i], issue)
			}
		}
	})

	t.Run("over-long title and meta are independent issues", func(t *testing.T) {
		t.Parallel()

		longTitle := strings.Repeat("t", 61)
		longMeta := strings.Repeat("m", 161)
		src := `<html><head><title>` + longTitle + `</title>
			<meta name="description" content="` + longMeta + `"></head>
			<body><h1>H</h1></body></html>`

		page := ParsePage("https://example.com", src, 200)
		if len(page.Issues) != 2 {
			t.Fatalf("issues = %v, want title+meta length issues", page.Issues)
		}
		if page.Issues[0] != issueTitleTooLong || page.Issues[1] != issueMetaTooLong {
			t.Errorf("issues = %v", page.Issues)
		}
	})

	t.Run("length limits count characters not bytes", func(t *testing.T) {
		t.Parallel()

		title := strings.Repeat("é", 60)
		meta := strings.Repeat("ü", 160)
		src := `<html><head><title>` + title + `</title>
			<meta name="description" content="` + meta + `"></head>
			<body><h1>H</h1></body></html>`

		page := ParsePage("https://example.com", src, 200)
		if len(page.Issues) != 0 {
			t.Errorf("issues = %v, want none at exactly 60 and 160 characters", page.Issues)
		}
	})

	t.Run("whitespace-only tags count as missing", func(t *testing.T) {
		t.Parallel()

		src := `<html><head><title>   </title></head><body><h1>
		</h1></body></html>`
		page := ParsePage("https://example.com", src, 200)
		if page.HasTitle() {
			t.Error("whitespace title should be absent")
		}
		if page.HasFirstHeading() {
			t.Error("whitespace h1 should be absent")
		}
	})

	t.Run("image without alt text is an issue with truncated URL", func(t *testing.T) {
		t.Parallel()

		longName := strings.Repeat("x", 80)
		src := `<html><head><title>T</title>
			<meta name="description" content="D"></head>
			<body><h1>H</h1><img src="/` + longName + `.png"></body></html>`

		page := ParsePage("https://example.com", src, 200)
		if len(page.Issues) != 1 {
			t.Fatalf("issues = %v, want a single alt-text issue", page.Issues)
		}
		issue := page.Issues[0]
		if !strings.HasPrefix(issue, issueMissingAltLabel) {
			t.Errorf("issue = %q", issue)
		}
		if !strings.HasSuffix(issue, "...") {
			t.Errorf("expected truncated URL in %q", issue)
		}
		if len(issue) > len(issueMissingAltLabel)+maxImageURLLength+3 {
			t.Errorf("issue URL not truncated: %q", issue)
		}
	})
}

// TestTruncate tests rune-boundary truncation of issue text.
func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(%q, 10) = %q", "short", got)
	}

	got := truncate(strings.Repeat("ü", 60), 50)
	want := strings.Repeat("ü", 50) + "..."
	if got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
}

// TestParsePageMalformedHTML tests that tag soup still parses.
func TestParsePageMalformedHTML(t *testing.T) {
	t.Parallel()

	src := `<title>Unclosed</title><body><h1>Heading<a href="/x">link`
	page := ParsePage("https://example.com", src, 200)

	if page.Title != "Unclosed" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.FirstHeading == "" {
		t.Error("expected heading from malformed HTML")
	}
	if len(page.OutboundLinks) != 1 {
		t.Errorf("links = %v", page.OutboundLinks)
	}
}
