// Package log provides structured logging with automatic masking of
// sensitive values, built on top of the standard slog package.
//
// Site configs can carry authentication headers and cookies for crawling
// gated staging environments. The RedactHandler makes sure those never
// reach the logs:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer/JWT tokens, keys)
//   - Session identifiers and credentials
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewRedactLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // masked as ***REDACTED***
//	    "url", "https://example.com",
//	)
//
//	slog.SetDefault(logger)
package log
