// Package database provides SQLite-based storage for seocli.
//
// This package implements the AuditDB, which stores:
//   - Per-page crawl records with metadata and issues
//   - Complete audit reports for historical comparison
//
// SQLite via modernc.org/sqlite keeps the store a single CGO-free file,
// and WAL mode gives good concurrent read performance while audits write.
package database
