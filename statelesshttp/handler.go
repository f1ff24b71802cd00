package statelesshttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"

	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/jsonrpc"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/logctx"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcp"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcpservice"
)

var _ http.Handler = (*Handler)(nil)

const (
	// DefaultEndpoint is the protocol endpoint path.
	DefaultEndpoint = "/mcp"

	mcpSessionIDHeader = "Mcp-Session-Id"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// internalErrorEnvelope is the fixed JSON-RPC error written when transport
// handling fails before any response has been sent. The id is null because
// no request could be correlated; the message stays generic so internal
// detail never reaches the client.
const internalErrorEnvelope = `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal server error"},"id":null}` + "\n"

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the slog logger used by the handler. If not provided,
// logs are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithEndpoint overrides the protocol endpoint path (default /mcp).
func WithEndpoint(path string) Option {
	return func(h *Handler) { h.path = path }
}

// Handler is the stateless HTTP front door and transport adapter. It serves
// the protocol endpoint (POST-only) and answers CORS preflight on any path.
type Handler struct {
	svc  *mcpservice.Service
	log  *slog.Logger
	path string
}

// New constructs a Handler over the given protocol handler.
func New(svc *mcpservice.Service, opts ...Option) *Handler {
	h := &Handler{
		svc:  svc,
		log:  slog.New(slog.DiscardHandler),
		path: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = slog.New(logctx.Handler{Handler: h.log.Handler()})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Permissive CORS on every response, preflight included.
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "Content-Type")

	ctx := logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     r.Method,
		RemoteAddr: r.RemoteAddr,
		Path:       r.URL.Path,
	})
	r = r.WithContext(ctx)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.URL.Path != h.path {
		writeJSONError(w, http.StatusNotFound, "Not Found")
		return
	}

	// The endpoint is POST-only by protocol contract.
	if r.Method != http.MethodPost {
		h.log.InfoContext(ctx, "http.method.rejected")
		writeJSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	h.handlePost(w, r)
}

// handlePost runs one protocol exchange: decode the envelope(s), resolve a
// session id, dispatch into the protocol handler, and write the JSON-RPC
// response(s) back over this same HTTP response.
func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	h.log.InfoContext(ctx, "http.post.start")

	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		h.log.WarnContext(ctx, "content_type.unsupported")
		writeJSONError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.WarnContext(ctx, "http.body.read.fail", slog.String("err", err.Error()))
		h.writeInternalError(ctx, w)
		return
	}

	msgs, batch, err := jsonrpc.DecodeMessages(body)
	if err != nil {
		h.log.WarnContext(ctx, "jsonrpc.decode.fail", slog.String("err", err.Error()))
		h.writeInternalError(ctx, w)
		return
	}

	// Stateless session correlation: reuse whatever the client presents,
	// mint a fresh id only when an initialize batch arrives without one.
	sessID := r.Header.Get(mcpSessionIDHeader)
	if sessID == "" && containsMethod(msgs, mcp.InitializeMethod) {
		sessID = uuid.NewString()
		h.log.InfoContext(ctx, "session.assign", slog.String("session_id", sessID))
	}
	if sessID != "" {
		ctx = logctx.WithSessionData(ctx, &logctx.SessionData{SessionID: sessID})
	}

	tx := newRequestTransport(ctx, w, sessID)
	defer tx.Close()

	defer func() {
		if rec := recover(); rec != nil {
			h.log.ErrorContext(ctx, "http.post.panic", slog.Any("panic", rec))
			if !tx.Wrote() {
				h.writeInternalError(ctx, w)
			}
		}
	}()

	responses := make([]*jsonrpc.Response, 0, len(msgs))
	for i := range msgs {
		if ctx.Err() != nil {
			h.log.InfoContext(ctx, "http.post.client_gone")
			return
		}
		req := msgs[i].AsRequest()
		if req == nil {
			// A stateless server never issues requests, so inbound response
			// messages have nothing to correlate with.
			h.log.InfoContext(ctx, "rpc.response.ignored")
			continue
		}
		if req.IsNotification() {
			h.svc.HandleNotification(ctx, req)
			continue
		}
		responses = append(responses, h.svc.HandleRequest(ctx, req))
	}

	if len(responses) == 0 {
		if err := tx.WriteAccepted(); err != nil {
			h.log.WarnContext(ctx, "http.write.fail", slog.String("err", err.Error()))
		}
		h.log.InfoContext(ctx, "http.post.ok", slog.Duration("dur", time.Since(start)))
		return
	}

	var payload any = responses[0]
	if batch {
		payload = responses
	}
	if err := tx.WriteJSON(http.StatusOK, payload); err != nil {
		h.log.WarnContext(ctx, "http.write.fail", slog.String("err", err.Error()))
		return
	}
	h.log.InfoContext(ctx, "http.post.ok", slog.Duration("dur", time.Since(start)))
}

// writeInternalError emits the fixed -32603 envelope for failures that
// happen before any response bytes were written.
func (h *Handler) writeInternalError(ctx context.Context, w http.ResponseWriter) {
	if ctx.Err() != nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if _, err := io.WriteString(w, internalErrorEnvelope); err != nil {
		h.log.WarnContext(ctx, "http.write.fail", slog.String("err", err.Error()))
	}
}

// writeJSONError emits a transport-level rejection body before a JSON-RPC
// exchange is possible. Shape: {"error":"<reason>"}.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func containsMethod(msgs []jsonrpc.AnyMessage, method mcp.Method) bool {
	for i := range msgs {
		if msgs[i].Method == string(method) {
			return true
		}
	}
	return false
}
