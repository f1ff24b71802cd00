// Package mcp contains the protocol data types and constants spoken over
// the wire by the widget server. It mirrors the Model Context Protocol wire
// representation while keeping the surface Go-friendly (exported structs
// with json tags, string constants for method names).
//
// The package is intentionally free of transport logic: the stateless HTTP
// transport imports these types but implements its own framing and session
// handling, and the service layer constructs responses from these concrete
// types before handing them off for JSON-RPC serialization.
//
// Beyond the JSON-RPC core, tool and resource descriptors carry a `_meta`
// object. That is the protocol's extension point for out-of-band UI hints:
// the widget server uses it to associate every tool, resource, and call
// result with the widget's presentation surface.
package mcp
