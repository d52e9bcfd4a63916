package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReporter_DisabledMetricsIsANoop(t *testing.T) {
	r := NewReporter("", "1.0.0", true)
	assert.False(t, r.enabled)
	// With no public key and metrics disabled, Report must not panic or
	// attempt any network I/O.
	r.Report(ServerStarted)
}

func TestNewReporter_EmptyPublicKeyDisablesReporting(t *testing.T) {
	r := NewReporter("", "1.0.0", false)
	assert.True(t, r.enabled)
	r.ReportWithProperties(WorkspaceIndexed, map[string]interface{}{"modules": 42})
}

func TestNewReporter_AssignsStableDistinctID(t *testing.T) {
	r1 := NewReporter("", "1.0.0", true)
	r2 := NewReporter("", "1.0.0", true)
	assert.NotEmpty(t, r1.distinctID)
	assert.Equal(t, r1.distinctID, r2.distinctID)
}

func TestLogMessageParams_CarriesTypeAndMessage(t *testing.T) {
	params := LogMessageParams{Type: MessageWarning, Message: "snapshot rebuild took 3.2s"}
	assert.Equal(t, MessageWarning, params.Type)
	assert.Equal(t, "snapshot rebuild took 3.2s", params.Message)
}
