package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithWriter_InitializesState(t *testing.T) {
	for _, tt := range []struct {
		name      string
		verbosity VerbosityLevel
	}{
		{"default", VerbosityDefault},
		{"verbose", VerbosityVerbose},
		{"debug", VerbosityDebug},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.verbosity, &buf)
			require.NotNil(t, l)
			assert.Equal(t, tt.verbosity, l.Verbosity())
			assert.NotNil(t, l.timings)
		})
	}
}

func TestLogger_ProgressRespectsVerbosity(t *testing.T) {
	for _, tt := range []struct {
		name       string
		verbosity  VerbosityLevel
		wantOutput bool
	}{
		{"default hides progress", VerbosityDefault, false},
		{"verbose shows progress", VerbosityVerbose, true},
		{"debug shows progress", VerbosityDebug, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.verbosity, &buf)
			l.Progress("indexing %d modules", 7)

			if tt.wantOutput {
				assert.Contains(t, buf.String(), "indexing 7 modules")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLogger_DebugOnlyAtDebugVerbosity(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)
	l.Debug("should not appear")
	assert.Empty(t, buf.String())

	l2 := NewLoggerWithWriter(VerbosityDebug, &buf)
	l2.Debug("parsed in %dms", 12)
	assert.Contains(t, buf.String(), "parsed in 12ms")
}

func TestLogger_WarningAndErrorAlwaysLog(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)
	l.Warning("snapshot is stale")
	l.Error("failed to parse %s", "a.py")

	out := buf.String()
	assert.Contains(t, out, "Warning: snapshot is stale")
	assert.Contains(t, out, "Error: failed to parse a.py")
}

func TestLogger_TimingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)
	done := l.StartTiming("snapshot_build")
	done()
	assert.GreaterOrEqual(t, l.GetTiming("snapshot_build"), time.Duration(0))
}
