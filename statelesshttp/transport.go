package statelesshttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
)

var (
	errTransportClosed = errors.New("transport closed")
	errAlreadyWritten  = errors.New("response already written")
)

// requestTransport binds one HTTP response to one protocol exchange. The
// resolved session id is a construction-time parameter so the transport is
// never mutated after it exists. Writes are refused once the client
// connection is gone, a response has been sent, or the transport is closed;
// Close is idempotent.
type requestTransport struct {
	ctx       context.Context
	w         http.ResponseWriter
	sessionID string

	mu     sync.Mutex
	wrote  bool
	closed bool
}

func newRequestTransport(ctx context.Context, w http.ResponseWriter, sessionID string) *requestTransport {
	return &requestTransport{ctx: ctx, w: w, sessionID: sessionID}
}

// WriteJSON writes the full JSON response body with the given status.
func (t *requestTransport) WriteJSON(status int, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writableLocked(); err != nil {
		return err
	}
	t.applyHeadersLocked()
	t.w.Header().Set("Content-Type", "application/json")
	t.w.WriteHeader(status)
	t.wrote = true
	return json.NewEncoder(t.w).Encode(v)
}

// WriteAccepted acknowledges a notification-only exchange with 202 and no
// body.
func (t *requestTransport) WriteAccepted() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writableLocked(); err != nil {
		return err
	}
	t.applyHeadersLocked()
	t.w.WriteHeader(http.StatusAccepted)
	t.wrote = true
	return nil
}

// Wrote reports whether a response has been sent.
func (t *requestTransport) Wrote() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wrote
}

// Close releases the transport. It is safe to call more than once and after
// a completed write; no writes are possible afterwards.
func (t *requestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *requestTransport) writableLocked() error {
	if t.closed {
		return errTransportClosed
	}
	if t.wrote {
		return errAlreadyWritten
	}
	// Client connection gone; never touch the response writer again.
	if err := t.ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (t *requestTransport) applyHeadersLocked() {
	if t.sessionID != "" {
		t.w.Header().Set(mcpSessionIDHeader, t.sessionID)
	}
}
