// Package cmd implements the pathfinder-ls CLI: a cobra root command with
// a serve subcommand that starts the analysis core over stdio, grounded on
// the teacher's cmd/root.go + cmd/serve.go (persistent flags, banner
// display on bare invocation, background indexing while the server
// already accepts requests).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microsoft/python-language-server-sub014/internal/output"
	"github.com/microsoft/python-language-server-sub014/internal/telemetry"
)

var (
	// Version and GitCommit are overridden at build time via -ldflags.
	Version   = "0.1.0"
	GitCommit = "HEAD"

	reporter *telemetry.Reporter
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder-ls",
	Short: "Python language-analysis server core",
	Long: `pathfinder-ls is a language-analysis server for Python source: it
resolves imports, binds names to lexical scopes, tracks per-document
diagnostics, and produces per-document symbol outlines over a thin
JSON-RPC adapter.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics")
		reporter = telemetry.NewReporter(telemetryPublicKey, Version, disableMetrics)

		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(os.Stderr, Version, output.DefaultBannerOptions())
			}
		}
	},
}

// telemetryPublicKey is set at build time via -ldflags; empty means
// telemetry is a no-op regardless of --disable-metrics.
var telemetryPublicKey = ""

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymous usage metrics")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
