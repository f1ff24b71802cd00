// Package mcpservice implements the protocol handler of the widget server:
// the mapping from MCP request types to widget catalog lookups and
// protocol-shaped responses.
//
// A Service exposes one typed operation per protocol method (ListTools,
// CallTool, ListResources, ListResourceTemplates, ReadResource, plus the
// initialize/ping lifecycle), and a HandleRequest entry point that
// dispatches a decoded JSON-RPC request by method name and maps operation
// errors onto JSON-RPC error codes:
//
//   - unknown tool or resource   -> -32602 (invalid params)
//   - argument validation failed -> -32602 (invalid params)
//   - unknown method             -> -32601 (method not found)
//   - anything unexpected        -> -32603 with a generic message; the
//     real cause is logged operator-side only.
//
// The Service holds no mutable state: every response is derived from the
// immutable catalog, so a single Service is safe for concurrent use by any
// number of in-flight requests.
package mcpservice
