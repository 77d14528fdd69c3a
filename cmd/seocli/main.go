// Package main provides the entry point for the seocli CLI.
//
// seocli is an SEO auditing tool for websites. It crawls a site, checks
// each page for common SEO problems, and produces per-page and site-wide
// reports in text, JSON, CSV, or Markdown form.
//
// Usage:
//
//	seocli crawl <url>
//	seocli analyze <url>
//	seocli compare <url>
//
// See --help for all available options.
package main

// main is the entry point for seocli.
func main() {
	Execute()
}
