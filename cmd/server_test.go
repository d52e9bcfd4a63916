package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/python-language-server-sub014/internal/binder"
	"github.com/microsoft/python-language-server-sub014/internal/config"
	"github.com/microsoft/python-language-server-sub014/internal/output"
	"github.com/microsoft/python-language-server-sub014/internal/pathresolver"
	"github.com/microsoft/python-language-server-sub014/internal/protocol"
	"github.com/microsoft/python-language-server-sub014/internal/telemetry"
)

func newTestServer(t *testing.T) (*analysisServer, func()) {
	t.Helper()
	logger := output.NewLoggerWithWriter(output.VerbosityDefault, &discardWriter{})
	rep := telemetry.NewReporter("", "test", true)
	dispatcher := protocol.NewDispatcher(&discardWriter{})
	srv := newAnalysisServer(t.TempDir(), config.Default(), logger, rep, dispatcher)
	srv.registerHandlers()
	srv.runPublisher()
	return srv, func() {
		if srv.publisherCancel != nil {
			srv.publisherCancel()
		}
	}
}

type discardWriter struct{}

func (*discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestResolverAdapter_ResolvesAgainstCurrentSnapshot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "widget.py"), []byte("x = 1\n"), 0o644))

	watcher, err := pathresolver.NewWatcher([]string{root})
	require.NoError(t, err)
	defer watcher.Close()

	cache, err := pathresolver.NewImportCache(16)
	require.NoError(t, err)

	adapter := newResolverAdapter(watcher, cache)
	assert.True(t, adapter.ResolveAbsolute("widget", filepath.Join(root, "main.py")))
	assert.False(t, adapter.ResolveAbsolute("totally_bogus_package", filepath.Join(root, "main.py")))
}

func TestAnalysisServer_AnalyzeDocumentReplacesDiagnostics(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	uri := "file:///project/mod.py"
	srv.analyzeDocument(uri, []byte("print(totally_unbound)\n"))

	entries := srv.diagStore.Snapshot(uri)
	require.Len(t, entries, 1)
	assert.Equal(t, string(binder.CodeUndefinedVariable), entries[0].Code)
}

func TestAnalysisServer_AnalyzeDocumentParseErrorReported(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	uri := "file:///project/broken.py"
	srv.analyzeDocument(uri, []byte("def(:\n"))

	entries := srv.diagStore.Snapshot(uri)
	if len(entries) > 0 {
		assert.Equal(t, "parse-error", entries[0].Code)
	}
}

func TestAnalysisServer_DocumentSymbolReturnsOutlineAfterWorkerCompletes(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	uri := "file:///project/mod.py"
	srv.analyzeDocument(uri, []byte("def greet():\n    return 1\n"))

	waitUntil(t, time.Second, func() bool {
		_, ok := srv.outlineCache.Get(uri)
		return ok
	})

	params, err := json.Marshal(documentSymbolParams{TextDocument: textDocumentIdentifier{URI: uri}})
	require.NoError(t, err)

	result, rpcErr := srv.handleDocumentSymbol(params)
	require.Nil(t, rpcErr)
	symbols, ok := result.([]*wireSymbol)
	require.True(t, ok)
	require.Len(t, symbols, 1)
	assert.Equal(t, "greet", symbols[0].Name)
}

func TestAnalysisServer_DidCloseDisposesWorkerAndClearsDiagnostics(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	uri := "file:///project/mod.py"
	srv.analyzeDocument(uri, []byte("print(totally_unbound)\n"))
	require.NotEmpty(t, srv.diagStore.Snapshot(uri))

	params, err := json.Marshal(didCloseParams{TextDocument: textDocumentIdentifier{URI: uri}})
	require.NoError(t, err)
	_, rpcErr := srv.handleDidClose(params)
	require.Nil(t, rpcErr)

	assert.Empty(t, srv.diagStore.Snapshot(uri))
	srv.workersMu.Lock()
	_, stillTracked := srv.workers[uri]
	srv.workersMu.Unlock()
	assert.False(t, stillTracked)
	_, cached := srv.outlineCache.Get(uri)
	assert.False(t, cached)
}

func TestAnalysisServer_DidChangeConfigurationAppliesSeverityOverrides(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	params, err := json.Marshal(didChangeConfigurationParams{
		Settings: config.WorkspaceSettings{
			SeverityOverrides: map[string]string{string(binder.CodeUndefinedVariable): "information"},
		},
	})
	require.NoError(t, err)

	_, rpcErr := srv.handleDidChangeConfiguration(params)
	require.Nil(t, rpcErr)

	uri := "file:///project/mod.py"
	srv.analyzeDocument(uri, []byte("print(totally_unbound)\n"))

	entries := srv.diagStore.Snapshot(uri)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Severity) // diagnostics.SeverityInformation
}

func TestAnalysisServer_PingHandler(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	result, rpcErr := srv.handlePing(nil)
	require.Nil(t, rpcErr)
	assert.Equal(t, map[string]string{"status": "ok"}, result)
}
