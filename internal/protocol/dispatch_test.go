package protocol

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_HandleSuccess(t *testing.T) {
	var out bytes.Buffer
	d := NewDispatcher(&out)
	d.Register("ping", func(params json.RawMessage) (interface{}, *Error) {
		return map[string]string{"status": "ok"}, nil
	})

	resp := d.Handle(&Request{JSONRPC: "2.0", ID: float64(1), Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]string{"status": "ok"}, resp.Result)
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d := NewDispatcher(&bytes.Buffer{})
	resp := d.Handle(&Request{JSONRPC: "2.0", ID: float64(1), Method: "textDocument/frobnicate"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestDispatcher_NotificationProducesNoResponse(t *testing.T) {
	called := false
	d := NewDispatcher(&bytes.Buffer{})
	d.Register("textDocument/didOpen", func(params json.RawMessage) (interface{}, *Error) {
		called = true
		return nil, nil
	})

	resp := d.Handle(&Request{JSONRPC: "2.0", Method: "textDocument/didOpen"})
	assert.Nil(t, resp)
	assert.True(t, called)
}

func TestDispatcher_UnknownNotificationIsSilentlyIgnored(t *testing.T) {
	d := NewDispatcher(&bytes.Buffer{})
	resp := d.Handle(&Request{JSONRPC: "2.0", Method: "some/unknown/notification"})
	assert.Nil(t, resp)
}

func TestDispatcher_WrongJSONRPCVersion(t *testing.T) {
	d := NewDispatcher(&bytes.Buffer{})
	resp := d.Handle(&Request{JSONRPC: "1.0", ID: float64(1), Method: "ping"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRequest, resp.Error.Code)
}

func TestDispatcher_HandlerErrorBecomesErrorResponse(t *testing.T) {
	d := NewDispatcher(&bytes.Buffer{})
	d.Register("textDocument/documentSymbol", func(params json.RawMessage) (interface{}, *Error) {
		return nil, NewErrorf(ErrCodeInvalidParams, "missing uri")
	})

	resp := d.Handle(&Request{JSONRPC: "2.0", ID: float64(2), Method: "textDocument/documentSymbol"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "missing uri")
}

func TestDispatcher_NotifySendsFramedMessage(t *testing.T) {
	var out bytes.Buffer
	d := NewDispatcher(&out)
	require.NoError(t, d.Notify("textDocument/publishDiagnostics", map[string]string{"uri": "file:///a.py"}))
	assert.Contains(t, out.String(), "Content-Length:")
	assert.Contains(t, out.String(), "textDocument/publishDiagnostics")
}

func TestDispatcher_ServeProcessesFramedRequestStream(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, WriteMessage(&in, []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))

	var out bytes.Buffer
	d := NewDispatcher(&out)
	d.Register("ping", func(params json.RawMessage) (interface{}, *Error) {
		return "pong", nil
	})

	require.NoError(t, d.Serve(&in))
	assert.Contains(t, out.String(), `"result":"pong"`)
}

func TestDispatcher_ServeRecoversFromMalformedJSON(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, WriteMessage(&in, []byte(`not json`)))

	var out bytes.Buffer
	d := NewDispatcher(&out)

	require.NoError(t, d.Serve(&in))
	assert.Contains(t, out.String(), `"code":-32700`)
}
