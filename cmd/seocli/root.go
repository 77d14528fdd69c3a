// Package main provides the entry point for the seocli CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for seocli.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seocli",
		Short: "SEO auditing tool for websites",
		Long: `seocli audits websites for SEO issues. It crawls a site breadth-first,
checks each page for missing titles, meta descriptions, headings, and alt
text, finds broken links and duplicate titles, and verifies robots.txt
rules and response headers.

Audit results are archived locally so later runs can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
