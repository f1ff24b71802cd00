package mcpservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/internal/jsonrpc"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/mcp"
	"github.com/ryan-timothy-albert/openai-apps-sdk-examples/widget"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	c, err := widget.NewCatalog(
		widget.Widget{
			ID:           "pizza-map",
			Title:        "Show Pizza Map",
			TemplateURI:  "ui://widget/pizza-map.html",
			Invoking:     "Hand-tossing a map",
			Invoked:      "Served a fresh map",
			HTML:         "<div id=\"map\"></div>",
			ResponseText: "Rendered a pizza map!",
		},
		widget.Widget{
			ID:           "pizza-list",
			Title:        "Show Pizza List",
			TemplateURI:  "ui://widget/pizza-list.html",
			Invoking:     "Hand-tossing a list",
			Invoked:      "Served a fresh list",
			HTML:         "<ol id=\"list\"></ol>",
			ResponseText: "Rendered a pizza list!",
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return New(c, WithServerInfo(mcp.ImplementationInfo{Name: "pizzaz-test", Version: "0.0.1"}))
}

// makeRequest decodes a raw JSON-RPC request the same way the transport does.
func makeRequest(t *testing.T, raw string) *jsonrpc.Request {
	t.Helper()
	msgs, _, err := jsonrpc.DecodeMessages([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeMessages failed: %v", err)
	}
	req := msgs[0].AsRequest()
	if req == nil {
		t.Fatalf("message is not a request: %s", raw)
	}
	return req
}

func wantMetaKeys(t *testing.T, meta map[string]any, uri string) {
	t.Helper()
	if meta == nil {
		t.Fatal("metadata block missing")
	}
	if got := meta["openai/outputTemplate"]; got != uri {
		t.Errorf("outputTemplate = %v, want %v", got, uri)
	}
	for _, k := range []string{"openai/toolInvocation/invoking", "openai/toolInvocation/invoked"} {
		if v, ok := meta[k].(string); !ok || v == "" {
			t.Errorf("metadata key %q missing or empty", k)
		}
	}
	if meta["openai/widgetAccessible"] != true {
		t.Error("widgetAccessible flag not true")
	}
	if meta["openai/resultCanProduceWidget"] != true {
		t.Error("resultCanProduceWidget flag not true")
	}
}

func TestListToolsOnePerWidget(t *testing.T) {
	svc := newTestService(t)
	res := svc.ListTools(context.Background())

	if len(res.Tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(res.Tools))
	}
	seen := map[string]int{}
	for _, tool := range res.Tools {
		seen[tool.Name]++

		if tool.Title == "" || tool.Description == "" {
			t.Errorf("tool %q missing title or description", tool.Name)
		}

		schema := tool.InputSchema
		if schema.Type != "object" {
			t.Errorf("tool %q schema type = %q, want object", tool.Name, schema.Type)
		}
		if prop, ok := schema.Properties["pizzaTopping"]; !ok || prop.Type != "string" {
			t.Errorf("tool %q schema lacks string pizzaTopping property", tool.Name)
		}
		if len(schema.Required) != 1 || schema.Required[0] != "pizzaTopping" {
			t.Errorf("tool %q schema required = %v, want [pizzaTopping]", tool.Name, schema.Required)
		}
		if schema.AdditionalProperties {
			t.Errorf("tool %q schema allows additional properties", tool.Name)
		}

		ann := tool.Annotations
		if ann == nil || !ann.ReadOnlyHint {
			t.Errorf("tool %q not marked read-only", tool.Name)
		}
		if ann == nil || ann.DestructiveHint == nil || *ann.DestructiveHint {
			t.Errorf("tool %q not marked non-destructive", tool.Name)
		}
		if ann == nil || ann.OpenWorldHint == nil || *ann.OpenWorldHint {
			t.Errorf("tool %q not marked closed-world", tool.Name)
		}

		wantMetaKeys(t, tool.Meta, "ui://widget/"+tool.Name+".html")
	}
	if seen["pizza-map"] != 1 || seen["pizza-list"] != 1 {
		t.Errorf("tool names = %v, want exactly one per widget", seen)
	}
}

func TestListResourcesAndTemplates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res := svc.ListResources(ctx)
	if len(res.Resources) != 2 {
		t.Fatalf("got %d resources, want 2", len(res.Resources))
	}
	for _, r := range res.Resources {
		if r.MimeType != widget.MimeType {
			t.Errorf("resource %q mimeType = %q, want %q", r.URI, r.MimeType, widget.MimeType)
		}
		wantMetaKeys(t, r.Meta, r.URI)
	}

	tpls := svc.ListResourceTemplates(ctx)
	if len(tpls.ResourceTemplates) != 2 {
		t.Fatalf("got %d templates, want 2", len(tpls.ResourceTemplates))
	}
	for i, tpl := range tpls.ResourceTemplates {
		if tpl.URITemplate != res.Resources[i].URI {
			t.Errorf("template %d uriTemplate = %q, want %q", i, tpl.URITemplate, res.Resources[i].URI)
		}
		if tpl.MimeType != widget.MimeType {
			t.Errorf("template %q mimeType = %q", tpl.URITemplate, tpl.MimeType)
		}
		wantMetaKeys(t, tpl.Meta, tpl.URITemplate)
	}
}

func TestReadResource(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.ReadResource(ctx, "ui://widget/pizza-map.html")
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(res.Contents))
	}
	c := res.Contents[0]
	if c.URI != "ui://widget/pizza-map.html" {
		t.Errorf("content uri = %q", c.URI)
	}
	if c.MimeType != widget.MimeType {
		t.Errorf("content mimeType = %q", c.MimeType)
	}
	if c.Text != "<div id=\"map\"></div>" {
		t.Errorf("content text = %q, want the widget markup", c.Text)
	}
	wantMetaKeys(t, c.Meta, c.URI)

	_, err = svc.ReadResource(ctx, "ui://widget/calzone.html")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("unregistered URI: got err %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "ui://widget/calzone.html") {
		t.Errorf("not-found error does not identify the URI: %v", err)
	}
}

func TestCallTool(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.CallTool(ctx, &mcp.CallToolRequestReceived{
		Name:      "pizza-map",
		Arguments: json.RawMessage(`{"pizzaTopping":"pepperoni"}`),
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("content = %+v, want one text block", res.Content)
	}
	if res.Content[0].Text != "Rendered a pizza map!" {
		t.Errorf("content text = %q", res.Content[0].Text)
	}
	if got := res.StructuredContent["pizzaTopping"]; got != "pepperoni" {
		t.Errorf("structuredContent pizzaTopping = %v, want pepperoni", got)
	}
	wantMetaKeys(t, res.Meta, "ui://widget/pizza-map.html")
}

func TestCallToolValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		args string
	}{
		{"missing field", `{}`},
		{"no arguments", ``},
		{"wrong type", `{"pizzaTopping":42}`},
		{"extra field", `{"pizzaTopping":"pepperoni","size":"xl"}`},
		{"not an object", `"pepperoni"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var raw json.RawMessage
			if tc.args != "" {
				raw = json.RawMessage(tc.args)
			}
			// Every widget's tool shares the schema; failures must be uniform.
			for _, name := range []string{"pizza-map", "pizza-list"} {
				_, err := svc.CallTool(ctx, &mcp.CallToolRequestReceived{Name: name, Arguments: raw})
				var invalid *ValidationError
				if !errors.As(err, &invalid) {
					t.Errorf("tool %q args %q: got err %v, want ValidationError", name, tc.args, err)
				}
			}
		})
	}
}

func TestCallToolUnknownName(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CallTool(context.Background(), &mcp.CallToolRequestReceived{
		Name:      "calzone",
		Arguments: json.RawMessage(`{"pizzaTopping":"pepperoni"}`),
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got err %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "calzone") {
		t.Errorf("not-found error does not identify the tool: %v", err)
	}
}

func TestInitializeVersionNegotiation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res := svc.Initialize(ctx, &mcp.InitializeRequest{ProtocolVersion: "2024-11-05"})
	if res.ProtocolVersion != "2024-11-05" {
		t.Errorf("known version: got %q, want echo", res.ProtocolVersion)
	}

	res = svc.Initialize(ctx, &mcp.InitializeRequest{ProtocolVersion: "1999-01-01"})
	if res.ProtocolVersion != mcp.LatestProtocolVersion {
		t.Errorf("unknown version: got %q, want %q", res.ProtocolVersion, mcp.LatestProtocolVersion)
	}

	if res.ServerInfo.Name != "pizzaz-test" {
		t.Errorf("serverInfo.Name = %q", res.ServerInfo.Name)
	}
	if res.Capabilities.Tools == nil || res.Capabilities.Resources == nil {
		t.Error("initialize must advertise tools and resources capabilities")
	}
}

func TestHandleRequestDispatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("tools/list", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		if resp.Error != nil {
			t.Fatalf("unexpected error: %+v", resp.Error)
		}
		var res mcp.ListToolsResult
		if err := json.Unmarshal(resp.Result, &res); err != nil {
			t.Fatalf("result decode failed: %v", err)
		}
		if len(res.Tools) != 2 {
			t.Errorf("got %d tools, want 2", len(res.Tools))
		}
	})

	t.Run("ping", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":2,"method":"ping"}`))
		if resp.Error != nil {
			t.Fatalf("unexpected error: %+v", resp.Error)
		}
		if string(resp.Result) != "{}" {
			t.Errorf("ping result = %s, want {}", resp.Result)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":3,"method":"tools/destroy"}`))
		if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeMethodNotFound {
			t.Fatalf("got %+v, want method-not-found error", resp.Error)
		}
	})

	t.Run("resource miss maps to invalid params", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"ui://widget/nope.html"}}`))
		if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeInvalidParams {
			t.Fatalf("got %+v, want invalid-params error", resp.Error)
		}
		if !strings.Contains(resp.Error.Message, "ui://widget/nope.html") {
			t.Errorf("error message does not identify the URI: %q", resp.Error.Message)
		}
	})

	t.Run("validation failure maps to invalid params", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"pizza-map","arguments":{}}}`))
		if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeInvalidParams {
			t.Fatalf("got %+v, want invalid-params error", resp.Error)
		}
	})

	t.Run("response id echoes request id", func(t *testing.T) {
		resp := svc.HandleRequest(ctx, makeRequest(t, `{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`))
		if resp.ID.String() != "abc" {
			t.Errorf("response id = %q, want abc", resp.ID.String())
		}
	})
}

func TestListResultsAreByteIdentical(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	marshal := func(v any) []byte {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		return b
	}

	if !bytes.Equal(marshal(svc.ListTools(ctx)), marshal(svc.ListTools(ctx))) {
		t.Error("tools/list results differ across identical calls")
	}
	if !bytes.Equal(marshal(svc.ListResources(ctx)), marshal(svc.ListResources(ctx))) {
		t.Error("resources/list results differ across identical calls")
	}
	if !bytes.Equal(marshal(svc.ListResourceTemplates(ctx)), marshal(svc.ListResourceTemplates(ctx))) {
		t.Error("resources/templates/list results differ across identical calls")
	}
}
