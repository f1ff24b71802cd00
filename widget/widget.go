// Package widget defines the widget catalog: an immutable, process-wide
// registry of pizza-themed UI components, each exposed over MCP as one
// tool, one resource, and one resource template.
package widget

// MimeType is the media type of widget markup resources.
const MimeType = "text/html+skybridge"

// Widget is one catalog entry. Widgets are defined at process start and
// never mutated; the HTML payload is an opaque blob from the server's
// perspective.
type Widget struct {
	// ID is the catalog key and doubles as the MCP tool name.
	ID string
	// Title is the display name, also used as the tool description.
	Title string
	// TemplateURI identifies the widget's markup resource
	// (ui://widget/<name>.html) and doubles as the resource key.
	TemplateURI string
	// Invoking and Invoked are short status strings shown during and
	// after tool execution.
	Invoking string
	Invoked  string
	// HTML is the widget markup payload.
	HTML string
	// ResponseText is the fixed text returned when the tool is invoked.
	ResponseText string
}

// Meta builds the metadata block that ties a protocol response back to the
// widget's presentation surface. It is attached identically to the tool
// descriptor, both resource descriptors, and tool call results so clients
// never need a separate lookup.
func (w *Widget) Meta() map[string]any {
	return map[string]any{
		"openai/outputTemplate":          w.TemplateURI,
		"openai/toolInvocation/invoking": w.Invoking,
		"openai/toolInvocation/invoked":  w.Invoked,
		"openai/widgetAccessible":        true,
		"openai/resultCanProduceWidget":  true,
	}
}
