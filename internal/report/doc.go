// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown for sharing audits
//   - CSVWriter: One row per page for spreadsheet triage
//
// Report data structures live in the model package; writers only render
// them, so new output formats never touch the core types. Writers
// implement the Writer interface and compose via MultiWriter for
// multi-format output.
package report
