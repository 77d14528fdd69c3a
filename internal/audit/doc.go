// Package audit orchestrates the steps of one site audit: crawling, the
// site-level analyzers, summary generation, and optional persistence.
//
// The Pipeline runs Steps in order, threading one AuditReport through all
// of them. DefaultPipeline assembles the standard step order; the
// BatchProcessor runs independent pipelines for multiple sites under a
// concurrency limit.
package audit
