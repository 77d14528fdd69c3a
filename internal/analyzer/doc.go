// Package analyzer provides site-level SEO checks that run alongside the
// crawl: on-page markup analysis of the start page, robots.txt policy and
// sitemap discovery, and response header inspection.
//
// Analyzers implement the Analyzer interface and return model.Finding
// values, keeping detection separate from reporting. Each analyzer does
// its own (small, bounded) network fetches; the bulk crawl results arrive
// through AnalysisData.
package analyzer
