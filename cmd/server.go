package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/microsoft/python-language-server-sub014/internal/binder"
	"github.com/microsoft/python-language-server-sub014/internal/config"
	"github.com/microsoft/python-language-server-sub014/internal/diagnostics"
	"github.com/microsoft/python-language-server-sub014/internal/output"
	"github.com/microsoft/python-language-server-sub014/internal/pathresolver"
	"github.com/microsoft/python-language-server-sub014/internal/protocol"
	"github.com/microsoft/python-language-server-sub014/internal/pyast"
	"github.com/microsoft/python-language-server-sub014/internal/symbolworker"
	"github.com/microsoft/python-language-server-sub014/internal/telemetry"
)

// defaultSeverities gives every binder diagnostic code a built-in severity
// before any client override is applied. Undefined names, unresolved
// imports, parse errors and call-site mismatches that CPython itself rejects
// are errors; the method-shape, typing and exec/scope-placement findings are
// warnings, and a wildcard import inside a function is information only.
var defaultSeverities = map[string]diagnostics.Severity{
	"parse-error":                                            diagnostics.SeverityError,
	string(binder.CodeUndefinedVariable):                     diagnostics.SeverityError,
	string(binder.CodeVariableNotDefinedGlobally):             diagnostics.SeverityError,
	string(binder.CodeUnresolvedImport):                      diagnostics.SeverityError,
	string(binder.CodeDuplicateParameter):                    diagnostics.SeverityError,
	string(binder.CodeVariableNotDefinedNonlocal):             diagnostics.SeverityError,
	string(binder.CodeGlobalAfterUse):                        diagnostics.SeverityWarning,
	string(binder.CodeNonlocalAtModuleScope):                 diagnostics.SeverityWarning,
	string(binder.CodeUnqualifiedExec):                       diagnostics.SeverityWarning,
	string(binder.CodeWildcardImportUncertain):                diagnostics.SeverityInformation,
	string(binder.CodeTooManyFunctionArguments):               diagnostics.SeverityError,
	string(binder.CodeParameterMissing):                       diagnostics.SeverityError,
	string(binder.CodeNoSelfArgument):                         diagnostics.SeverityWarning,
	string(binder.CodeNoClsArgument):                          diagnostics.SeverityWarning,
	string(binder.CodeNoMethodArgument):                       diagnostics.SeverityWarning,
	string(binder.CodeReturnInInit):                           diagnostics.SeverityError,
	string(binder.CodeInheritNonClass):                        diagnostics.SeverityError,
	string(binder.CodePositionalArgumentAfterKeyword):         diagnostics.SeverityError,
	string(binder.CodeUnknownParameterName):                   diagnostics.SeverityError,
	string(binder.CodeParameterAlreadySpecified):               diagnostics.SeverityError,
	string(binder.CodePositionalOnlyNamed):                    diagnostics.SeverityError,
	string(binder.CodeTypingGenericArguments):                 diagnostics.SeverityWarning,
	string(binder.CodeTypingTypeVarArguments):                 diagnostics.SeverityWarning,
	string(binder.CodeTypingNewTypeArguments):                 diagnostics.SeverityWarning,
	string(binder.CodeTooManyPositionalArgumentsBeforeStar):   diagnostics.SeverityError,
	string(binder.CodeTypeVarLinter):                          diagnostics.SeverityWarning,
}

// analysisServer wires the four analysis components to the protocol
// dispatcher: it owns the one filesystem watcher, the diagnostics store and
// its idle publisher, and a symbol worker per open document. Grounded on the
// teacher's mcp.Server, which plays the same "holds every subsystem, answers
// every RPC method" role for its own four-pass call graph.
type analysisServer struct {
	projectPath string
	logger      *output.Logger
	reporter    *telemetry.Reporter
	dispatcher  *protocol.Dispatcher

	settingsMu sync.Mutex
	settings   *config.WorkspaceSettings

	resolverMu sync.RWMutex
	watcher    *pathresolver.Watcher
	importCache *pathresolver.ImportCache
	resolver   *resolverAdapter
	ready      bool

	diagStore *diagnostics.Store
	publisher *diagnostics.Publisher

	docsMu sync.Mutex
	docs   map[string][]byte

	workersMu    sync.Mutex
	workers      map[string]*symbolworker.Worker
	outlineCache *symbolworker.OutlineCache

	publisherCancel context.CancelFunc
}

func newAnalysisServer(projectPath string, settings *config.WorkspaceSettings, logger *output.Logger, reporter *telemetry.Reporter, dispatcher *protocol.Dispatcher) *analysisServer {
	s := &analysisServer{
		projectPath: projectPath,
		logger:      logger,
		reporter:    reporter,
		dispatcher:  dispatcher,
		settings:    settings,
		docs:        map[string][]byte{},
		workers:     map[string]*symbolworker.Worker{},
	}

	s.diagStore = diagnostics.NewStore(settings.SeverityMap(defaultSeverities), s.publishDiagnostics)
	s.publisher = diagnostics.NewPublisher(s.diagStore, settings.PublishingDelay(), settings.PublishingDelay()/4)

	cache, err := symbolworker.NewOutlineCache(256)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// can't happen with this constant.
		panic(fmt.Sprintf("building outline cache: %v", err))
	}
	s.outlineCache = cache

	return s
}

// registerHandlers installs every method this server answers. Handlers stay
// thin: decode params, call into the owning subsystem, encode the result —
// all analysis logic lives in internal/binder, internal/diagnostics and
// internal/symbolworker.
func (s *analysisServer) registerHandlers() {
	s.dispatcher.Register("initialize", s.handleInitialize)
	s.dispatcher.Register("ping", s.handlePing)
	s.dispatcher.Register("shutdown", s.handleShutdown)
	s.dispatcher.Register("textDocument/didOpen", s.handleDidOpen)
	s.dispatcher.Register("textDocument/didChange", s.handleDidChange)
	s.dispatcher.Register("textDocument/didClose", s.handleDidClose)
	s.dispatcher.Register("textDocument/documentSymbol", s.handleDocumentSymbol)
	s.dispatcher.Register("workspace/didChangeConfiguration", s.handleDidChangeConfiguration)
}

// runPublisher starts the diagnostics publisher's idle-tick loop, stopped by
// cancelPublisher on shutdown.
func (s *analysisServer) runPublisher() {
	ctx, cancel := context.WithCancel(context.Background())
	s.publisherCancel = cancel
	go s.publisher.Run(ctx)
}

// buildWorkspaceIndex builds the path resolver's initial snapshot and starts
// watching the project tree, reporting progress the way the teacher reports
// background indexing phases. It runs in its own goroutine so the server can
// start accepting requests (until this finishes, binder calls use
// binder.NoResolver and so treat every import as resolved).
func (s *analysisServer) buildWorkspaceIndex() {
	s.dispatcher.Notify("python/beginProgress", telemetry.BeginProgressParams{
		Token: "workspace-index",
		Phase: "resolving-imports",
		Title: "Building import path snapshot",
	})
	s.logger.Progress("Building path resolver snapshot for %s...", s.projectPath)
	stop := s.logger.StartTiming("workspace_index")

	watcher, err := pathresolver.NewWatcher([]string{s.projectPath})
	if err != nil {
		s.logger.Error("failed to build path resolver snapshot: %v", err)
		s.dispatcher.Notify("python/endProgress", telemetry.EndProgressParams{Token: "workspace-index"})
		return
	}

	cache, err := pathresolver.NewImportCache(2048)
	if err != nil {
		s.logger.Error("failed to build import cache: %v", err)
		s.dispatcher.Notify("python/endProgress", telemetry.EndProgressParams{Token: "workspace-index"})
		return
	}

	s.resolverMu.Lock()
	s.watcher = watcher
	s.importCache = cache
	s.resolver = newResolverAdapter(watcher, cache)
	s.ready = true
	s.resolverMu.Unlock()

	stop()
	elapsed := s.logger.GetTiming("workspace_index")
	s.logger.Progress("Path resolver snapshot ready in %s", elapsed)
	s.dispatcher.Notify("python/reportProgress", telemetry.ReportProgressParams{
		Token:   "workspace-index",
		Message: "Snapshot ready",
		Percent: 100,
	})
	s.dispatcher.Notify("python/endProgress", telemetry.EndProgressParams{Token: "workspace-index"})
	s.reporter.ReportWithProperties(telemetry.WorkspaceIndexed, map[string]interface{}{
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

func (s *analysisServer) currentResolver() binder.ImportResolver {
	s.resolverMu.RLock()
	defer s.resolverMu.RUnlock()
	if !s.ready {
		return binder.NoResolver{}
	}
	return s.resolver
}

// ---- wire shapes ----

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

type initializeParams struct {
	RootPath string `json:"rootPath"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}

type serverCapabilities struct {
	DocumentSymbolProvider bool `json:"documentSymbolProvider"`
	DiagnosticsProvider    bool `json:"diagnosticsProvider"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument    textDocumentIdentifier `json:"textDocument"`
	ContentChanges  []contentChange        `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type documentSymbolParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type didChangeConfigurationParams struct {
	Settings config.WorkspaceSettings `json:"settings"`
}

type wirePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

func spanToRange(span pyast.Span) wireRange {
	return wireRange{
		Start: wirePosition{Line: span.StartLine, Character: span.StartColumn},
		End:   wirePosition{Line: span.EndLine, Character: span.EndColumn},
	}
}

type wireDiagnostic struct {
	Range    wireRange `json:"range"`
	Severity int       `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
}

type publishDiagnosticsParams struct {
	URI         string           `json:"uri"`
	Diagnostics []wireDiagnostic `json:"diagnostics"`
}

type wireSymbol struct {
	Name           string        `json:"name"`
	Kind           int           `json:"kind"`
	Detail         string        `json:"detail,omitempty"`
	Range          wireRange     `json:"range"`
	SelectionRange wireRange     `json:"selectionRange"`
	Children       []*wireSymbol `json:"children,omitempty"`
}

func symbolToWire(sym *symbolworker.Symbol) *wireSymbol {
	w := &wireSymbol{
		Name:           sym.Name,
		Kind:           int(sym.Kind),
		Detail:         sym.Detail,
		Range:          spanToRange(sym.Span),
		SelectionRange: spanToRange(sym.NameSpan),
	}
	for _, child := range sym.Children {
		w.Children = append(w.Children, symbolToWire(child))
	}
	return w
}

// ---- handlers ----

// handleInitialize just echoes server capabilities. Workspace indexing and
// the diagnostics publisher are already running by the time this arrives —
// both start at process startup in runServe, not on the initialize
// handshake, since a stdio server has no other client to wait for.
func (s *analysisServer) handleInitialize(params json.RawMessage) (interface{}, *protocol.Error) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid initialize params: %v", err)
		}
	}
	return initializeResult{Capabilities: serverCapabilities{DocumentSymbolProvider: true, DiagnosticsProvider: true}}, nil
}

func (s *analysisServer) handlePing(json.RawMessage) (interface{}, *protocol.Error) {
	return map[string]string{"status": "ok"}, nil
}

func (s *analysisServer) handleShutdown(json.RawMessage) (interface{}, *protocol.Error) {
	if s.publisherCancel != nil {
		s.publisherCancel()
	}
	s.workersMu.Lock()
	for _, w := range s.workers {
		w.Dispose()
	}
	s.workersMu.Unlock()
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.reporter.Report(telemetry.ServerStopped)
	return nil, nil
}

func (s *analysisServer) handleDidOpen(params json.RawMessage) (interface{}, *protocol.Error) {
	var p didOpenParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid didOpen params: %v", err)
	}
	s.analyzeDocument(p.TextDocument.URI, []byte(p.TextDocument.Text))
	return nil, nil
}

func (s *analysisServer) handleDidChange(params json.RawMessage) (interface{}, *protocol.Error) {
	var p didChangeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid didChange params: %v", err)
	}
	if len(p.ContentChanges) == 0 {
		return nil, nil
	}
	// Incremental range-based edits are out of scope; the client always
	// sends the full document text per change event.
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	s.analyzeDocument(p.TextDocument.URI, []byte(text))
	return nil, nil
}

func (s *analysisServer) handleDidClose(params json.RawMessage) (interface{}, *protocol.Error) {
	var p didCloseParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid didClose params: %v", err)
	}
	uri := p.TextDocument.URI

	s.docsMu.Lock()
	delete(s.docs, uri)
	s.docsMu.Unlock()

	s.workersMu.Lock()
	if w, ok := s.workers[uri]; ok {
		w.Dispose()
		delete(s.workers, uri)
	}
	s.workersMu.Unlock()
	s.outlineCache.Invalidate(uri)
	s.diagStore.Remove(uri)
	return nil, nil
}

// documentSymbolTimeout bounds how long a documentSymbol request waits for
// an in-flight or about-to-start outline fetch before giving up and
// answering with whatever's cached (possibly nothing) — a client shouldn't
// hang its UI on a single slow parse.
const documentSymbolTimeout = 3 * time.Second

func (s *analysisServer) handleDocumentSymbol(params json.RawMessage) (interface{}, *protocol.Error) {
	var p documentSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid documentSymbol params: %v", err)
	}
	if outline, ok := s.outlineCache.Get(p.TextDocument.URI); ok {
		return outlineToWire(outline), nil
	}
	s.workersMu.Lock()
	w, ok := s.workers[p.TextDocument.URI]
	s.workersMu.Unlock()
	if !ok {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidRequest, "document not open: %s", p.TextDocument.URI)
	}
	if outline, ok := w.Outline(); ok {
		return outlineToWire(outline), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), documentSymbolTimeout)
	defer cancel()
	outline, err := w.GetSymbolsAsync().Wait(ctx)
	if err != nil || outline == nil {
		return []*wireSymbol{}, nil
	}
	return outlineToWire(outline), nil
}

func outlineToWire(outline *symbolworker.Outline) []*wireSymbol {
	wired := make([]*wireSymbol, 0, len(outline.Symbols))
	for _, sym := range outline.Symbols {
		wired = append(wired, symbolToWire(sym))
	}
	return wired
}

func (s *analysisServer) handleDidChangeConfiguration(params json.RawMessage) (interface{}, *protocol.Error) {
	var p didChangeConfigurationParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCodeInvalidParams, "invalid didChangeConfiguration params: %v", err)
	}

	s.settingsMu.Lock()
	s.settings.ApplyDidChangeConfiguration(&p.Settings)
	severity := s.settings.SeverityMap(defaultSeverities)
	s.settingsMu.Unlock()

	*s.diagStore.SeverityMap() = *severity
	return nil, nil
}

// analyzeDocument runs binder.Bind over text and replaces uri's
// stored diagnostics, then (re)starts its symbol worker so documentSymbol
// has a fresh outline once the worker finishes.
func (s *analysisServer) analyzeDocument(uri string, text []byte) {
	s.docsMu.Lock()
	s.docs[uri] = text
	s.docsMu.Unlock()

	path := uriToPath(uri)
	mod, err := pyast.Parse(text)
	if err != nil {
		s.diagStore.Replace(uri, text, []diagnostics.Entry{{
			Code:    "parse-error",
			Message: err.Error(),
		}})
		s.publisher.MarkDirty(uri)
		return
	}

	_, diags := binder.Bind(mod, path, s.currentResolver())
	entries := make([]diagnostics.Entry, 0, len(diags))
	for _, d := range diags {
		entries = append(entries, diagnostics.Entry{
			Code:    string(d.Code),
			Span:    d.Span,
			Message: d.Message,
		})
	}
	s.diagStore.Replace(uri, text, entries)
	s.publisher.MarkDirty(uri)

	s.requestOutline(uri)
}

func (s *analysisServer) requestOutline(uri string) {
	s.workersMu.Lock()
	w, ok := s.workers[uri]
	if !ok {
		w = symbolworker.NewWorker(uri, s.fetchOutline, s.onOutlineDone)
		s.workers[uri] = w
	}
	s.workersMu.Unlock()
	w.Request(context.Background())
}

// fetchOutline is the symbol worker's FetchFunc: it re-parses whatever text
// is currently stored for uri, independent of the binder pass already run
// in analyzeDocument, so a slow outline build never blocks diagnostics.
func (s *analysisServer) fetchOutline(ctx context.Context, uri string) (*symbolworker.Outline, error) {
	s.docsMu.Lock()
	text := s.docs[uri]
	s.docsMu.Unlock()

	mod, err := pyast.Parse(text)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return symbolworker.BuildOutline(uri, mod), nil
}

func (s *analysisServer) onOutlineDone(uri string, outline *symbolworker.Outline, err error) {
	if err != nil {
		s.logger.Debug("outline build failed for %s: %v", uri, err)
		return
	}
	s.outlineCache.Put(uri, outline)
	s.reporter.Report(telemetry.DocumentSymbolsBuilt)
}

func (s *analysisServer) publishDiagnostics(uri string, entries []diagnostics.Entry) {
	wired := make([]wireDiagnostic, 0, len(entries))
	for _, e := range entries {
		wired = append(wired, wireDiagnostic{
			Range:    spanToRange(e.Span),
			Severity: int(e.Severity),
			Code:     e.Code,
			Message:  e.Message,
		})
	}
	s.dispatcher.Notify("textDocument/publishDiagnostics", publishDiagnosticsParams{URI: uri, Diagnostics: wired})
	s.reporter.Report(telemetry.DiagnosticsReported)
}

// uriToPath strips a file:// scheme from uri, leaving a filesystem path the
// path resolver and binder can work with. Non-file URIs pass through
// unchanged since every caller in this server only ever opens file:// URIs.
func uriToPath(uri string) string {
	const scheme = "file://"
	if len(uri) > len(scheme) && uri[:len(scheme)] == scheme {
		return filepath.Clean(uri[len(scheme):])
	}
	return uri
}
