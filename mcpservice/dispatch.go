package mcpservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/jsonrpc"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/logctx"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcp"
)

// HandleRequest dispatches one decoded JSON-RPC request by method name and
// returns the response to write back. It never returns nil: every failure
// mode maps onto a JSON-RPC error response scoped to this request.
func (s *Service) HandleRequest(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method, ID: req.ID.String()})

	result, err := s.dispatch(ctx, req)
	if err != nil {
		var notFound *NotFoundError
		var invalid *ValidationError
		switch {
		case errors.As(err, &notFound), errors.As(err, &invalid):
			s.log.InfoContext(ctx, "rpc.request.rejected", slog.String("err", err.Error()))
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error())
		case errors.Is(err, errMethodNotFound):
			s.log.InfoContext(ctx, "rpc.method.unknown")
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, "method not found: "+req.Method)
		default:
			// Real cause stays operator-side; the client sees a generic error.
			s.log.ErrorContext(ctx, "rpc.request.fail", slog.String("err", err.Error()))
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, "internal server error")
		}
	}

	resp, err := jsonrpc.NewResultResponse(req.ID, result)
	if err != nil {
		s.log.ErrorContext(ctx, "rpc.response.encode.fail", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, "internal server error")
	}
	s.log.InfoContext(ctx, "rpc.request.ok")
	return resp
}

// HandleNotification consumes a JSON-RPC notification. Unknown notifications
// are logged and dropped; the protocol forbids responding to them either way.
func (s *Service) HandleNotification(ctx context.Context, req *jsonrpc.Request) {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method})
	switch mcp.Method(req.Method) {
	case mcp.InitializedNotificationMethod:
		s.log.InfoContext(ctx, "session.initialized")
	default:
		s.log.InfoContext(ctx, "rpc.notification.ignored")
	}
}

var errMethodNotFound = errors.New("method not found")

func (s *Service) dispatch(ctx context.Context, req *jsonrpc.Request) (any, error) {
	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		var initReq mcp.InitializeRequest
		if err := unmarshalParams(req.Params, &initReq); err != nil {
			return nil, err
		}
		return s.Initialize(ctx, &initReq), nil

	case mcp.PingMethod:
		return s.Ping(ctx), nil

	case mcp.ToolsListMethod:
		return s.ListTools(ctx), nil

	case mcp.ToolsCallMethod:
		var callReq mcp.CallToolRequestReceived
		if err := unmarshalParams(req.Params, &callReq); err != nil {
			return nil, err
		}
		return s.CallTool(ctx, &callReq)

	case mcp.ResourcesListMethod:
		return s.ListResources(ctx), nil

	case mcp.ResourcesTemplatesListMethod:
		return s.ListResourceTemplates(ctx), nil

	case mcp.ResourcesReadMethod:
		var readReq mcp.ReadResourceRequest
		if err := unmarshalParams(req.Params, &readReq); err != nil {
			return nil, err
		}
		return s.ReadResource(ctx, readReq.URI)

	default:
		return nil, errMethodNotFound
	}
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return &ValidationError{Detail: "missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ValidationError{Detail: "malformed params: " + err.Error()}
	}
	return nil
}
