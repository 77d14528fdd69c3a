package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/SnickerSec/seo-cli/internal/model"
)

// AuditDB provides SQLite-based storage for crawled pages and audit
// reports. Archived reports feed the compare command, which diffs two
// audits of the same site.
//
// Design decision: one database file for all sites rather than a file per
// site. Cross-site listing and backup stay simple, and SQLite handles the
// volume easily.
type AuditDB struct {
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// Otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "seocli.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer, so a single pooled connection
	// avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Page records store individual page fetches, one row per URL per site
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		title TEXT,
		meta_description TEXT,
		first_heading TEXT,
		issues TEXT,
		UNIQUE(url, site)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_site ON pages(site);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Audit reports store complete audit results as JSON
	CREATE TABLE IF NOT EXISTS audit_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		issue_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_site ON audit_reports(site);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON audit_reports(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page fetch.
type PageRecord struct {
	ID              int64
	URL             string
	Site            string
	Timestamp       time.Time
	StatusCode      int
	Title           string
	MetaDescription string
	FirstHeading    string
	Issues          []string
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT so re-auditing a site refreshes its rows in place.
func (adb *AuditDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	issuesJSON, err := json.Marshal(record.Issues)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize issues: %w", err)
	}

	query := `
	INSERT INTO pages (url, site, status_code, title, meta_description, first_heading, issues)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, site) DO UPDATE SET
		status_code = excluded.status_code,
		title = excluded.title,
		meta_description = excluded.meta_description,
		first_heading = excluded.first_heading,
		issues = excluded.issues,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := adb.db.ExecContext(ctx, query,
		record.URL,
		record.Site,
		record.StatusCode,
		record.Title,
		record.MetaDescription,
		record.FirstHeading,
		string(issuesJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and site.
// Returns (nil, nil) when no record exists.
func (adb *AuditDB) GetPageRecord(ctx context.Context, url, site string) (*PageRecord, error) {
	query := `
	SELECT id, url, site, timestamp, status_code, title, meta_description, first_heading, issues
	FROM pages
	WHERE url = ? AND site = ?
	`

	var record PageRecord
	var issuesJSON string
	var timestamp string

	err := adb.db.QueryRowContext(ctx, query, url, site).Scan(
		&record.ID,
		&record.URL,
		&record.Site,
		&timestamp,
		&record.StatusCode,
		&record.Title,
		&record.MetaDescription,
		&record.FirstHeading,
		&issuesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)

	if issuesJSON != "" {
		if err := json.Unmarshal([]byte(issuesJSON), &record.Issues); err != nil {
			return nil, fmt.Errorf("failed to parse issues: %w", err)
		}
	}

	return &record, nil
}

// HasRecentAudit checks whether a URL was audited within the given duration.
func (adb *AuditDB) HasRecentAudit(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	if err := adb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent audit: %w", err)
	}

	return count > 0, nil
}

// SaveAuditReport saves a complete audit report as JSON, keyed by the
// site's start URL. Page rows are saved alongside so per-page history
// survives even if report schemas change.
func (adb *AuditDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	issueSummary := map[string]int{
		"high":   report.CountBySeverity(model.SeverityHigh),
		"medium": report.CountBySeverity(model.SeverityMedium),
		"low":    report.CountBySeverity(model.SeverityLow),
		"info":   report.CountBySeverity(model.SeverityInfo),
		"pages":  report.PagesCrawled(),
	}
	issueJSON, _ := json.Marshal(issueSummary) //nolint:errcheck,errchkjson // simple map; Marshal won't fail

	query := `
	INSERT INTO audit_reports (site, report_json, issue_summary)
	VALUES (?, ?, ?)
	`

	if _, err = adb.db.ExecContext(ctx, query,
		report.StartURL,
		string(reportJSON),
		string(issueJSON),
	); err != nil {
		return fmt.Errorf("failed to save audit report: %w", err)
	}

	for _, page := range report.Pages {
		record := &PageRecord{
			URL:             page.URL,
			Site:            report.StartURL,
			StatusCode:      page.Status,
			Title:           page.Title,
			MetaDescription: page.MetaDescription,
			FirstHeading:    page.FirstHeading,
			Issues:          page.Issues,
		}
		if _, err := adb.InsertPageRecord(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

// GetLatestAuditReport retrieves the most recent audit report for a site.
// Returns (nil, nil) when the site has never been audited.
func (adb *AuditDB) GetLatestAuditReport(ctx context.Context, site string) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE site = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, site).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListAuditedSites returns every site with at least one archived report.
func (adb *AuditDB) ListAuditedSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM audit_reports
	ORDER BY site
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// GetAuditHistory retrieves all audit reports for a site, newest first.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, site string) ([]*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE site = ?
	ORDER BY timestamp DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var reports []*model.AuditReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.AuditReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// AuditReportMetadata summarizes an archived report without the full JSON.
type AuditReportMetadata struct {
	// ID is the report's database identifier.
	ID int64

	// Site is the audited start URL.
	Site string

	// Timestamp is when the audit was performed.
	Timestamp time.Time

	// IssueSummary contains counts of findings by severity, plus the
	// "pages" count.
	IssueSummary map[string]int
}

// GetAuditHistoryWithMetadata retrieves report metadata for a site.
// Cheaper than GetAuditHistory when only the listing matters.
func (adb *AuditDB) GetAuditHistoryWithMetadata(ctx context.Context, site string) ([]AuditReportMetadata, error) {
	query := `
	SELECT id, site, timestamp, issue_summary
	FROM audit_reports
	WHERE site = ?
	ORDER BY timestamp DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditReportMetadata
	for rows.Next() {
		var meta AuditReportMetadata
		var timestamp string
		var issueJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &issueJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if issueJSON.Valid && issueJSON.String != "" {
			if err := json.Unmarshal([]byte(issueJSON.String), &meta.IssueSummary); err != nil {
				meta.IssueSummary = make(map[string]int)
			}
		} else {
			meta.IssueSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetAuditReportByID retrieves an audit report by its database ID.
func (adb *AuditDB) GetAuditReportByID(ctx context.Context, id int64) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp parses a timestamp string against the known SQLite
// formats, returning the zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
