// Package crawler implements the concurrent breadth-first site crawler at
// the heart of seo-cli.
//
// # Architecture
//
// The crawler is built from small, separately testable parts:
//
//   - Limiter: a token-bucket gate bounding requests per second
//   - Retry: an exponential-backoff wrapper around fallible operations
//   - Fetcher: one rate-limited, retried, timeout-bounded HTTP GET
//   - ParsePage: HTML extraction and per-page SEO issue derivation
//   - Frontier: the visited-set, queue, and concurrency admission loop
//   - GenerateSummary: the site-wide reduction over all page results
//
// Design decision: We implement our own crawl loop rather than using a
// third-party crawling framework because:
//  1. The scheduling rules (page budget, depth ceiling, single-flight
//     visitation) are observable behavior that reports depend on
//  2. We need two independent throttles: a concurrency cap and a
//     requests-per-second rate limit
//  3. Per-page failures must become data (a zero-status result), never
//     abort the crawl
//
// # Usage
//
//	frontier, err := crawler.NewFrontier("https://example.com", crawler.Options{MaxDepth: 3})
//	if err != nil {
//		return err
//	}
//	pages := frontier.Crawl(ctx)
//	summary := crawler.GenerateSummary(pages)
//
// # Politeness
//
// The crawler stays on the start host, skips binary assets and well-known
// non-content paths, identifies itself with a descriptive User-Agent, and
// paces requests through the shared rate limiter.
package crawler
