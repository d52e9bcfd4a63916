package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// HandlerFunc answers one JSON-RPC method call. Returning a non-nil Error
// produces a JSON-RPC error response; params is the raw, still-encoded
// "params" member so each handler can unmarshal into its own request shape.
type HandlerFunc func(params json.RawMessage) (interface{}, *Error)

// Dispatcher routes incoming JSON-RPC messages by method name to the
// analysis core's handlers, and lets the core push server-initiated
// notifications (publishDiagnostics, progress, logMessage) back out.
// It deliberately knows nothing about stdio framing or any particular
// component — cmd/server.go registers the pathresolver/binder/diagnostics/
// symbolworker handlers on it.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	writeMu sync.Mutex
	out     io.Writer
}

// NewDispatcher builds a Dispatcher that writes outgoing messages
// (responses and server-initiated notifications) to out.
func NewDispatcher(out io.Writer) *Dispatcher {
	return &Dispatcher{handlers: map[string]HandlerFunc{}, out: out}
}

// Register installs the handler for method, overwriting any prior one.
func (d *Dispatcher) Register(method string, handler HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = handler
}

// Handle dispatches one decoded request and returns the Response to send,
// or nil if req is a notification (no ID) and needs no reply.
func (d *Dispatcher) Handle(req *Request) *Response {
	if req.JSONRPC != "2.0" {
		return ErrorResponse(req.ID, NewErrorf(ErrCodeInvalidRequest, "jsonrpc must be \"2.0\""))
	}
	if req.Method == "" {
		return ErrorResponse(req.ID, NewErrorf(ErrCodeInvalidRequest, "method is required"))
	}

	d.mu.RLock()
	handler, ok := d.handlers[req.Method]
	d.mu.RUnlock()

	if !ok {
		if req.IsNotification() {
			return nil
		}
		return ErrorResponse(req.ID, NewErrorf(ErrCodeMethodNotFound, "method not found: %s", req.Method))
	}

	result, rpcErr := handler(req.Params)
	if req.IsNotification() {
		return nil
	}
	if rpcErr != nil {
		return ErrorResponse(req.ID, rpcErr)
	}
	return SuccessResponse(req.ID, result)
}

// Notify sends a server-initiated notification (no ID, no reply expected)
// such as textDocument/publishDiagnostics or python/reportProgress.
func (d *Dispatcher) Notify(method string, params interface{}) error {
	return d.send(Notification(method, params))
}

func (d *Dispatcher) send(v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling outgoing message: %w", err)
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return WriteMessage(d.out, body)
}

// Serve reads Content-Length-framed requests from r until EOF or a read
// error, dispatching each and writing any response back out. A malformed
// JSON payload produces a parse-error response rather than aborting the
// loop, so one bad message doesn't take down the connection; a malformed
// frame is a read error and ends the loop.
func (d *Dispatcher) Serve(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		body, err := ReadMessage(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}

		var req Request
		if jsonErr := json.Unmarshal(body, &req); jsonErr != nil {
			_ = d.send(ErrorResponse(nil, NewError(ErrCodeParseError, jsonErr.Error())))
			continue
		}

		if resp := d.Handle(&req); resp != nil {
			if sendErr := d.send(resp); sendErr != nil {
				return sendErr
			}
		}
	}
}
