package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SnickerSec/seo-cli/internal/database"
	"github.com/SnickerSec/seo-cli/internal/model"
)

// startTestSite starts an HTTP server with a small linked site carrying
// a mix of healthy pages and SEO problems.
func startTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
<title>Test Site</title>
<meta name="description" content="An end-to-end audit target with linked pages.">
</head>
<body>
<h1>Test Site</h1>
<a href="/about">About</a>
<a href="/bare">Bare</a>
<a href="/missing">Missing</a>
</body>
</html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
<title>About - Test Site</title>
<meta name="description" content="The about page.">
</head>
<body>
<h1>About</h1>
<a href="/">Home</a>
</body>
</html>`))
	})
	// No title, no meta description, no H1, image without alt text.
	mux.HandleFunc("/bare", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<body>
<p>Nothing to see.</p>
<img src="/pic.png">
<a href="/">Home</a>
</body>
</html>`))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestCrawlCommandIntegration runs the crawl command end to end against
// a local test site.
func TestCrawlCommandIntegration(t *testing.T) {
	t.Run("audits a site and writes a JSON report", func(t *testing.T) {
		srv := startTestSite(t)
		tmpDir := t.TempDir()
		reportPath := filepath.Join(tmpDir, "report.json")
		dbDir := filepath.Join(tmpDir, "db")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"crawl",
			"--json",
			"-o", reportPath,
			"--db-dir", dbDir,
			"--rate", "1000",
			srv.URL,
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify the report file
		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}

		var payload struct {
			Report *model.AuditReport `json:"report"`
		}
		if err := json.Unmarshal(content, &payload); err != nil {
			t.Fatalf("failed to parse report JSON: %v", err)
		}
		if payload.Report == nil {
			t.Fatal("expected report in JSON output")
		}
		if got := payload.Report.PagesCrawled(); got < 3 {
			t.Errorf("expected at least 3 pages, got %d", got)
		}
		if payload.Report.Summary == nil {
			t.Fatal("expected summary in report")
		}
		if len(payload.Report.Summary.MissingTitles) == 0 {
			t.Error("expected missing title to be detected on /bare")
		}

		// Verify the audit was archived
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		stored, err := db.GetLatestAuditReport(t.Context(), srv.URL)
		if err != nil {
			t.Fatalf("failed to load archived report: %v", err)
		}
		if stored == nil {
			t.Fatal("expected archived audit report")
		}
		if stored.PagesCrawled() != payload.Report.PagesCrawled() {
			t.Errorf("archived page count %d does not match report %d",
				stored.PagesCrawled(), payload.Report.PagesCrawled())
		}
	})

	t.Run("skips archiving with no-archive", func(t *testing.T) {
		srv := startTestSite(t)
		tmpDir := t.TempDir()
		dbDir := filepath.Join(tmpDir, "db")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"crawl",
			"--no-archive",
			"--db-dir", dbDir,
			"--rate", "1000",
			"-o", filepath.Join(tmpDir, "report.txt"),
			srv.URL,
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// No database directory should have been created
		if _, err := os.Stat(filepath.Join(dbDir, "seocli.db")); err == nil {
			t.Error("expected no database file when archiving is disabled")
		}
	})

	t.Run("fails without targets", func(t *testing.T) {
		cmd := NewRootCmd()
		cmd.SetArgs([]string{"crawl"})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error when no URL given")
		}
	})

	t.Run("fails for invalid target", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"crawl", "--db-dir", filepath.Join(tmpDir, "db"), "ftp://example.com"})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for non-http scheme")
		}
	})
}

// TestCrawlThenCompareIntegration audits a site twice and compares the
// archived results.
func TestCrawlThenCompareIntegration(t *testing.T) {
	srv := startTestSite(t)
	tmpDir := t.TempDir()
	dbDir := filepath.Join(tmpDir, "db")

	for i := 0; i < 2; i++ {
		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"crawl",
			"--db-dir", dbDir,
			"--rate", "1000",
			"-o", filepath.Join(tmpDir, "report.txt"),
			srv.URL,
		})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("audit %d failed: %v", i+1, err)
		}
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"compare", "--db-dir", dbDir, srv.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
}

// TestCrawlBatchIntegration audits multiple sites concurrently.
func TestCrawlBatchIntegration(t *testing.T) {
	srvA := startTestSite(t)
	srvB := startTestSite(t)
	tmpDir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"crawl",
		"--no-archive",
		"--db-dir", filepath.Join(tmpDir, "db"),
		"--batch", "2",
		"--rate", "1000",
		srvA.URL, srvB.URL,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("batch audit failed: %v", err)
	}
}

// TestInitThenCrawlIntegration generates a config file and audits with it.
func TestInitThenCrawlIntegration(t *testing.T) {
	srv := startTestSite(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".seocli")

	initCmd := NewRootCmd()
	initCmd.SetArgs([]string{"init", "-o", configPath})
	if err := initCmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	crawlCmd := NewRootCmd()
	crawlCmd.SetArgs([]string{
		"crawl",
		"--no-archive",
		"--db-dir", filepath.Join(tmpDir, "db"),
		"-c", configPath,
		"--rate", "1000",
		"-o", filepath.Join(tmpDir, "report.txt"),
		srv.URL,
	})
	if err := crawlCmd.Execute(); err != nil {
		t.Fatalf("crawl with config failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "report.txt"))
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(content), srv.URL) {
		t.Error("expected report to mention the audited site")
	}
}
