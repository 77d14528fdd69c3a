package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinel errors let callers branch with errors.Is()
// while still carrying a human-readable message.
var (
	// ErrNoTarget is returned when no start URL is given.
	ErrNoTarget = errors.New("no target specified: provide at least one start URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means only the start page is fetched.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	ErrInvalidMaxPages = errors.New("invalid page limit: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	// A rate of 0 means the default rate, not an unthrottled crawl.
	ErrInvalidRate = errors.New("invalid request rate: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown, and --csv is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --json, --markdown, --csv")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Zero means the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
