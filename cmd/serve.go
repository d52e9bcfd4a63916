package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microsoft/python-language-server-sub014/internal/config"
	"github.com/microsoft/python-language-server-sub014/internal/output"
	"github.com/microsoft/python-language-server-sub014/internal/protocol"
	"github.com/microsoft/python-language-server-sub014/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis server over stdio",
	Long: `Starts the Python language-analysis server core.

Requests and notifications are read as Content-Length-framed JSON-RPC
messages on stdin; responses and server-initiated notifications
(diagnostics, progress, telemetry) are written the same way to stdout.
The workspace's import path snapshot is built in the background, so the
server begins accepting requests immediately rather than blocking startup
on a large project tree.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("project", "p", ".", "Project root to analyze")
	serveCmd.Flags().String("settings", "", "Path to a YAML workspace settings file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	projectPath, _ := cmd.Flags().GetString("project")
	settingsPath, _ := cmd.Flags().GetString("settings")
	verbose, _ := cmd.Flags().GetBool("verbose")

	verbosity := output.VerbosityDefault
	if verbose {
		verbosity = output.VerbosityVerbose
	}
	logger := output.NewLogger(verbosity)

	settings := config.Default()
	if settingsPath != "" {
		loaded, err := config.Load(settingsPath)
		if err != nil {
			return fmt.Errorf("loading workspace settings: %w", err)
		}
		settings = loaded
	}

	logger.Progress("Starting pathfinder-ls serve for %s", projectPath)

	dispatcher := protocol.NewDispatcher(os.Stdout)
	server := newAnalysisServer(projectPath, settings, logger, reporter, dispatcher)
	server.registerHandlers()

	go server.buildWorkspaceIndex()
	server.runPublisher()
	reporter.Report(telemetry.ServerStarted)

	logger.Progress("Serving JSON-RPC on stdio (indexing in background)...")
	return dispatcher.Serve(os.Stdin)
}
