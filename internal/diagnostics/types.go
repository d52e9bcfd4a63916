// Package diagnostics implements the diagnostics service: a per-document,
// debounced, severity-mapped, suppressible store of binder findings that
// publishes snapshots to a client over the protocol layer.
package diagnostics

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// Severity mirrors the client-facing severity levels a diagnostic can be
// mapped to. Disabled entries are dropped before publication rather than
// sent with a "disabled" severity — there is no such wire value.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityDisabled
)

// Tag is an optional classification a client can use to render a finding
// differently (e.g. strikethrough for unused).
type Tag int

const (
	TagNone Tag = iota
	TagUnnecessary
	TagDeprecated
)

// Entry is one diagnostic finding scoped to a single document URI.
type Entry struct {
	Code     string
	Span     pyast.Span
	Message  string
	Severity Severity
	Tag      Tag
}
