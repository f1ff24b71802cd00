package mcpservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"

	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/logctx"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcp"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/widget"
)

// Service answers MCP requests from the widget catalog. Construct one with
// New and share it across requests; it carries no mutable state.
type Service struct {
	catalog      *widget.Catalog
	info         mcp.ImplementationInfo
	instructions string
	log          *slog.Logger

	// Reflected once at construction; every widget tool shares it.
	inputSchema mcp.ToolInputSchema
}

// Option configures a Service.
type Option func(*Service)

// WithServerInfo sets the implementation info returned from initialize.
func WithServerInfo(info mcp.ImplementationInfo) Option {
	return func(s *Service) { s.info = info }
}

// WithInstructions sets human-readable instructions returned from initialize.
func WithInstructions(instr string) Option {
	return func(s *Service) { s.instructions = instr }
}

// WithLogger sets the slog logger. If not provided, logs are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New constructs a Service over the given catalog.
func New(catalog *widget.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		info:        mcp.ImplementationInfo{Name: "pizzaz", Version: "0.1.0"},
		log:         slog.New(slog.DiscardHandler),
		inputSchema: reflectInputSchema[ToppingArgs](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize performs the protocol handshake. The client's protocol version
// is echoed when it is a revision this server speaks; otherwise the latest
// supported revision is offered.
func (s *Service) Initialize(ctx context.Context, req *mcp.InitializeRequest) *mcp.InitializeResult {
	version := mcp.LatestProtocolVersion
	if req != nil && slices.Contains(mcp.SupportedProtocolVersions, req.ProtocolVersion) {
		version = req.ProtocolVersion
	}
	return &mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged"`
			}{},
			Resources: &struct {
				ListChanged bool `json:"listChanged"`
				Subscribe   bool `json:"subscribe"`
			}{},
		},
		ServerInfo:   s.info,
		Instructions: s.instructions,
	}
}

// ListTools returns one tool descriptor per catalog widget.
func (s *Service) ListTools(ctx context.Context) *mcp.ListToolsResult {
	widgets := s.catalog.All()
	tools := make([]mcp.Tool, 0, len(widgets))
	for i := range widgets {
		w := &widgets[i]
		tools = append(tools, mcp.Tool{
			Name:        w.ID,
			Title:       w.Title,
			Description: w.Title,
			InputSchema: s.inputSchema,
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    true,
				DestructiveHint: ptr(false),
				OpenWorldHint:   ptr(false),
			},
			Meta: w.Meta(),
		})
	}
	return &mcp.ListToolsResult{Tools: tools}
}

// ListResources returns one resource descriptor per catalog widget.
func (s *Service) ListResources(ctx context.Context) *mcp.ListResourcesResult {
	widgets := s.catalog.All()
	resources := make([]mcp.Resource, 0, len(widgets))
	for i := range widgets {
		w := &widgets[i]
		resources = append(resources, mcp.Resource{
			URI:         w.TemplateURI,
			Name:        w.Title,
			Description: w.Title + " widget markup",
			MimeType:    widget.MimeType,
			Meta:        w.Meta(),
		})
	}
	return &mcp.ListResourcesResult{Resources: resources}
}

// ListResourceTemplates returns one resource template per catalog widget,
// mirroring ListResources under the template collection.
func (s *Service) ListResourceTemplates(ctx context.Context) *mcp.ListResourceTemplatesResult {
	widgets := s.catalog.All()
	templates := make([]mcp.ResourceTemplate, 0, len(widgets))
	for i := range widgets {
		w := &widgets[i]
		templates = append(templates, mcp.ResourceTemplate{
			URITemplate: w.TemplateURI,
			Name:        w.Title,
			Description: w.Title + " widget markup",
			MimeType:    widget.MimeType,
			Meta:        w.Meta(),
		})
	}
	return &mcp.ListResourceTemplatesResult{ResourceTemplates: templates}
}

// ReadResource returns the markup of the widget registered under the given
// template URI.
func (s *Service) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	w, ok := s.catalog.ByTemplateURI(uri)
	if !ok {
		return nil, &NotFoundError{Kind: "resource", Key: uri}
	}
	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{{
			URI:      w.TemplateURI,
			MimeType: widget.MimeType,
			Text:     w.HTML,
			Meta:     w.Meta(),
		}},
	}, nil
}

// CallTool invokes the widget tool named in the request. Arguments are
// validated strictly against the shared input schema; the topping value is
// echoed back in structuredContent.
func (s *Service) CallTool(ctx context.Context, req *mcp.CallToolRequestReceived) (*mcp.CallToolResult, error) {
	w, ok := s.catalog.ByID(req.Name)
	if !ok {
		return nil, &NotFoundError{Kind: "tool", Key: req.Name}
	}

	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: req.Name})

	args, err := decodeToppingArgs(req.Arguments)
	if err != nil {
		s.log.InfoContext(ctx, "tool.call.invalid_args", slog.String("err", err.Error()))
		return nil, err
	}

	s.log.InfoContext(ctx, "tool.call.ok")
	return &mcp.CallToolResult{
		Content:           []mcp.ContentBlock{{Type: "text", Text: w.ResponseText}},
		StructuredContent: map[string]any{"pizzaTopping": args.PizzaTopping},
		BaseMetadata:      mcp.BaseMetadata{Meta: w.Meta()},
	}, nil
}

// Ping answers the protocol-level liveness check.
func (s *Service) Ping(ctx context.Context) *mcp.EmptyResult {
	return &mcp.EmptyResult{}
}

// decodeToppingArgs validates a raw argument object against the widget tool
// schema: exactly one string field named pizzaTopping.
func decodeToppingArgs(raw json.RawMessage) (ToppingArgs, error) {
	var fields map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ToppingArgs{}, &ValidationError{Detail: "invalid arguments: expected an object"}
		}
	}
	topping, ok := fields["pizzaTopping"]
	if !ok {
		return ToppingArgs{}, &ValidationError{Detail: `invalid arguments: missing required property "pizzaTopping"`}
	}
	var args ToppingArgs
	if err := json.Unmarshal(topping, &args.PizzaTopping); err != nil {
		return ToppingArgs{}, &ValidationError{Detail: `invalid arguments: property "pizzaTopping" must be a string`}
	}
	for name := range fields {
		if name != "pizzaTopping" {
			return ToppingArgs{}, &ValidationError{Detail: "invalid arguments: unexpected property " + strconv.Quote(name)}
		}
	}
	return args, nil
}

func ptr[T any](v T) *T { return &v }
