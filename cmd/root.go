// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/logging"
)

// Default output locations, matching the layout the publishing job expects.
const (
	defaultDataDir      = "data"
	defaultHTMLPath     = "docs/index.html"
	defaultMarkdownPath = "README.md"
)

var rootCmd = &cobra.Command{
	Use:   "gh-metrics",
	Short: "A scheduled reporting job for GitHub commit activity.",
	Long: `gh-metrics collects commit counts for a user's repositories into
five cumulative time windows (today, week, month, quarter, year), persists
them as a JSON snapshot, and renders the snapshot as an HTML dashboard and
a markdown summary table.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandLogger builds the logger for one command invocation from the
// inherited verbose flag.
func commandLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	return logging.New(verbose)
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
