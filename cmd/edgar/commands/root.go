package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	rulesFile string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edgar",
	Short: "SEC filing metric extraction",
	Long: `edgar resolves standardized financial metrics from SEC XBRL filings.

A configurable rule table maps metric keys to the raw disclosure tags
companies actually file, with per-company overrides, year-windowed
aliases and dimensional segment matching.

Usage:
  go run ./cmd/edgar [command]

Examples:
  go run ./cmd/edgar extract PGR
  go run ./cmd/edgar extract PRI --form 10-K --year 2017
  go run ./cmd/edgar serve
  go run ./cmd/edgar worker`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule table file (default from RULES_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
