// Package config provides configuration structures and utilities for seocli.
// It defines the main options for crawling, auditing, and report generation,
// plus the YAML config file with per-site overrides.
package config
