// Package model defines the core data structures used throughout seo-cli.
//
// This package contains the following main types:
//   - CrawlTarget: A discovered URL waiting in the crawl queue
//   - PageResult: The per-page outcome of a crawl (extracted facts + issues)
//   - CrawlSummary: Site-wide issue aggregation over all page results
//   - AuditReport: The top-level report produced by one audit run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, analyzer, report, database) need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
