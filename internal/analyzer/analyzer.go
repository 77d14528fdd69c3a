package analyzer

import (
	"context"
	"net/http"
	"time"

	"github.com/SnickerSec/seo-cli/internal/model"
)

// AnalysisData carries the crawl results and shared settings into each
// analyzer.
type AnalysisData struct {
	// StartURL is the normalized URL the audit started from.
	StartURL string

	// Pages are the crawl results, in completion order.
	Pages []*model.PageResult

	// UserAgent identifies the auditor in analyzer-initiated requests
	// and is the agent tested against robots.txt rules.
	UserAgent string

	// Client is the HTTP client analyzers use for their own fetches.
	// When nil, a default client with a short timeout is used.
	Client *http.Client
}

// httpClient returns the configured client or a default one.
func (d *AnalysisData) httpClient() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Analyzer is a single site-level check.
type Analyzer interface {
	// Name returns a stable identifier used in logs and step records.
	Name() string

	// Analyze runs the check and returns its findings. Analyzers report
	// problems as findings, not errors; an error means the check itself
	// could not run.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}
