package binder

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// Diagnostic is one static binding finding produced while walking a scope
// tree. It carries only what the caller needs to hand this to
// internal/diagnostics for severity mapping and publication — this package
// never assigns a severity itself.
type Diagnostic struct {
	Code    Code
	Span    pyast.Span
	Message string
}

// ImportResolver lets the binder ask whether an import statement resolves,
// without this package depending on internal/pathresolver directly — the
// binder only needs a yes/no answer, not the resolver's internal state.
type ImportResolver interface {
	ResolveAbsolute(dottedName, fromFile string) bool
	ResolveRelative(fromFile string, dotCount int, suffix string) bool
}

// NoResolver is an ImportResolver that treats every import as resolved,
// useful for callers that only want scope/reference diagnostics (tests,
// and the server before its import path snapshot is ready).
type NoResolver struct{}

func (NoResolver) ResolveAbsolute(string, string) bool         { return true }
func (NoResolver) ResolveRelative(string, int, string) bool { return true }
