// Package telemetry forwards a small set of anonymous, non-PII
// server-lifecycle events (server started/stopped, workspace indexed,
// diagnostics published count) to PostHog, and also defines the
// notification payload shapes (progress, log messages, telemetry/event) for
// the protocol layer; of these the server sends only the progress
// notifications. Grounded on analytics/usage.go's ReportEventWithProperties
// shape.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

// Event names reported to PostHog, renamed from the teacher's scan/CI
// command tracking to this server's own lifecycle.
const (
	ServerStarted       = "pathfinder-ls:server_started"
	ServerStopped       = "pathfinder-ls:server_stopped"
	WorkspaceIndexed    = "pathfinder-ls:workspace_indexed"
	DiagnosticsReported = "pathfinder-ls:diagnostics_reported"
	DocumentSymbolsBuilt = "pathfinder-ls:document_symbols_built"
)

// Reporter sends telemetry events, or silently no-ops when metrics are
// disabled or no public key was configured — the same opt-out discipline
// the teacher's package-level enableMetrics flag implements, but held as
// struct state instead of package globals so tests can construct an
// isolated Reporter without touching process-wide state.
type Reporter struct {
	publicKey      string
	appVersion     string
	enabled        bool
	distinctID     string
}

// NewReporter builds a Reporter. disableMetrics mirrors the CLI's
// --disable-metrics flag; publicKey empty means telemetry is a no-op
// regardless of disableMetrics.
func NewReporter(publicKey, appVersion string, disableMetrics bool) *Reporter {
	return &Reporter{
		publicKey:  publicKey,
		appVersion: appVersion,
		enabled:    !disableMetrics,
		distinctID: loadOrCreateDistinctID(),
	}
}

// loadOrCreateDistinctID mirrors LoadEnvFile/createEnvFile: a per-machine
// anonymous UUID persisted under the user's home directory so repeated
// runs are attributable to the same (still anonymous) installation.
func loadOrCreateDistinctID() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return uuid.New().String()
	}
	envFile := filepath.Join(homeDir, ".pathfinder-ls", ".env")

	if _, statErr := os.Stat(envFile); os.IsNotExist(statErr) {
		if mkErr := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); mkErr != nil {
			return uuid.New().String()
		}
		env := map[string]string{"uuid": uuid.New().String()}
		if writeErr := godotenv.Write(env, envFile); writeErr != nil {
			return uuid.New().String()
		}
	}

	if loadErr := godotenv.Load(envFile); loadErr != nil {
		return uuid.New().String()
	}
	if id := os.Getenv("uuid"); id != "" {
		return id
	}
	return uuid.New().String()
}

// Report sends event with no additional properties.
func (r *Reporter) Report(event string) {
	r.ReportWithProperties(event, nil)
}

// ReportWithProperties sends event with properties, which must not contain
// any PII — no file paths, source text, or user-identifying information.
func (r *Reporter) ReportWithProperties(event string, properties map[string]interface{}) {
	if !r.enabled || r.publicKey == "" {
		return
	}

	disableGeoIP := false
	client, err := posthog.NewWithConfig(r.publicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry: posthog client init failed:", err)
		return
	}
	defer client.Close()

	capture := posthog.Capture{DistinctId: r.distinctID, Event: event}
	captureProperties := posthog.NewProperties()
	captureProperties.Set("os", runtime.GOOS)
	captureProperties.Set("arch", runtime.GOARCH)
	captureProperties.Set("go_version", runtime.Version())
	if r.appVersion != "" {
		captureProperties.Set("pathfinder_ls_version", r.appVersion)
	}
	for k, v := range properties {
		captureProperties.Set(k, v)
	}
	capture.Properties = captureProperties

	if err := client.Enqueue(capture); err != nil {
		fmt.Fprintln(os.Stderr, "telemetry: enqueue failed:", err)
	}
}
