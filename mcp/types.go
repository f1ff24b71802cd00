package mcp

// ClientCapabilities advertises client features during initialization.
type ClientCapabilities struct {
	Roots *struct {
		ListChanged bool `json:"listChanged"`
	} `json:"roots,omitempty"`
	Sampling    *struct{} `json:"sampling,omitempty"`
	Elicitation *struct{} `json:"elicitation,omitempty"`
}

// ServerCapabilities advertises server features during initialization.
type ServerCapabilities struct {
	Resources *struct {
		ListChanged bool `json:"listChanged"`
		Subscribe   bool `json:"subscribe"`
	} `json:"resources,omitempty"`
	Tools *struct {
		ListChanged bool `json:"listChanged"`
	} `json:"tools,omitempty"`
}

// ImplementationInfo names a protocol peer implementation.
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitzero"`
}

// ContentBlock is a typed content part of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitzero"`
}

// Tool describes a callable tool: its input schema, behavior annotations,
// and the widget metadata block under _meta.
type Tool struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitzero"`
	Description string           `json:"description,omitempty"`
	InputSchema ToolInputSchema  `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
	Meta        map[string]any   `json:"_meta,omitempty"`
}

// ToolInputSchema is a JSON-schema-like description of tool input.
// AdditionalProperties is serialized unconditionally so a strict schema
// reads as additionalProperties:false on the wire.
type ToolInputSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]SchemaProperty `json:"properties,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties bool                      `json:"additionalProperties"`
}

// SchemaProperty is a simplified schema node used in tool input schemas.
type SchemaProperty struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitzero"`
	Items       *SchemaProperty           `json:"items,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Enum        []any                     `json:"enum,omitempty"`
}

// ToolAnnotations are behavior hints attached to a tool descriptor.
// DestructiveHint and OpenWorldHint are pointers so an explicit false
// survives serialization.
type ToolAnnotations struct {
	ReadOnlyHint    bool  `json:"readOnlyHint,omitzero"`
	DestructiveHint *bool `json:"destructiveHint,omitempty"`
	IdempotentHint  bool  `json:"idempotentHint,omitzero"`
	OpenWorldHint   *bool `json:"openWorldHint,omitempty"`
}

// Resource represents an addressable content item.
type Resource struct {
	URI         string         `json:"uri"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitzero"`
	MimeType    string         `json:"mimeType,omitzero"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

// ResourceTemplate describes a template for resource URIs.
type ResourceTemplate struct {
	URITemplate string         `json:"uriTemplate"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitzero"`
	MimeType    string         `json:"mimeType,omitzero"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

// ResourceContents is one content entry of a resource read.
type ResourceContents struct {
	URI      string         `json:"uri"`
	MimeType string         `json:"mimeType,omitzero"`
	Text     string         `json:"text,omitzero"`
	Blob     string         `json:"blob,omitzero"`
	Meta     map[string]any `json:"_meta,omitempty"`
}

// LatestProtocolVersion is the most recent protocol revision this server
// speaks. It is offered during initialization when the client requests an
// unknown version.
const LatestProtocolVersion = "2025-06-18"

// SupportedProtocolVersions lists the revisions the server accepts verbatim.
var SupportedProtocolVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
}
