// Package config materializes workspace settings: defaults read once from
// an on-disk YAML file at startup, then overlaid by the client's
// workspace/didChangeConfiguration pushes. Grounded on the general shape of
// the pack's own YAML-backed config structs (read once, validated, defaults
// applied) rather than the teacher's own ad-hoc remote manifest fetcher,
// which solves a different problem (downloading rule bundles over HTTP).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/microsoft/python-language-server-sub014/internal/diagnostics"
)

// DefaultPublishingDelay matches the diagnostics service's documented
// default idle debounce window.
const DefaultPublishingDelay = 1000 * time.Millisecond

// WorkspaceSettings is the full set of keys a client may push under
// workspace/didChangeConfiguration, plus whatever was seeded from an
// on-disk settings file before the client's first push arrives.
type WorkspaceSettings struct {
	PublishingDelayMs int               `yaml:"publishingDelayMs" json:"publishingDelayMs"`
	SeverityOverrides map[string]string `yaml:"severityOverrides" json:"severityOverrides"`
	ExtraPaths        []string          `yaml:"extraPaths" json:"extraPaths"`
	DisableTelemetry  bool              `yaml:"disableTelemetry" json:"disableTelemetry"`
}

// Default returns the settings in effect before any config file or client
// push has been applied.
func Default() *WorkspaceSettings {
	return &WorkspaceSettings{
		PublishingDelayMs: int(DefaultPublishingDelay / time.Millisecond),
		SeverityOverrides: map[string]string{},
		ExtraPaths:        nil,
	}
}

// Load reads a YAML settings file at path and merges it over Default(),
// returning Default() unmodified if the file doesn't exist — an absent
// settings file is not an error, since none is required.
func Load(path string) (*WorkspaceSettings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("reading workspace settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing workspace settings %s: %w", path, err)
	}
	return settings, nil
}

// PublishingDelay returns the configured idle debounce window as a Duration.
func (s *WorkspaceSettings) PublishingDelay() time.Duration {
	if s.PublishingDelayMs <= 0 {
		return DefaultPublishingDelay
	}
	return time.Duration(s.PublishingDelayMs) * time.Millisecond
}

// SeverityMap builds a diagnostics.SeverityMap seeded from this
// configuration's defaults plus overrides. Unrecognized severity names are
// skipped rather than rejected, since a client-pushed config from a future
// version of this server might reference severities we don't yet know.
func (s *WorkspaceSettings) SeverityMap(defaults map[string]diagnostics.Severity) *diagnostics.SeverityMap {
	sm := diagnostics.NewSeverityMap(defaults)
	for code, name := range s.SeverityOverrides {
		if sev, ok := parseSeverity(name); ok {
			sm.Override(code, sev)
		}
	}
	return sm
}

func parseSeverity(name string) (diagnostics.Severity, bool) {
	switch name {
	case "error":
		return diagnostics.SeverityError, true
	case "warning":
		return diagnostics.SeverityWarning, true
	case "information":
		return diagnostics.SeverityInformation, true
	case "disabled":
		return diagnostics.SeverityDisabled, true
	default:
		return 0, false
	}
}

// ApplyDidChangeConfiguration merges a client-pushed configuration object
// over the current settings in place, matching workspace/didChangeConfiguration
// semantics (each push is a full replacement of the keys it names, not a
// deep merge of every key the server knows about).
func (s *WorkspaceSettings) ApplyDidChangeConfiguration(pushed *WorkspaceSettings) {
	if pushed == nil {
		return
	}
	if pushed.PublishingDelayMs > 0 {
		s.PublishingDelayMs = pushed.PublishingDelayMs
	}
	if pushed.SeverityOverrides != nil {
		s.SeverityOverrides = pushed.SeverityOverrides
	}
	if pushed.ExtraPaths != nil {
		s.ExtraPaths = pushed.ExtraPaths
	}
	s.DisableTelemetry = pushed.DisableTelemetry
}
