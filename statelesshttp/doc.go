// Package statelesshttp binds the widget protocol handler to a single HTTP
// POST endpoint. It mounts as a standard net/http handler.
//
// Each POST is one self-contained protocol exchange: the body is a JSON-RPC
// message or batch (a single object is treated as a one-element batch),
// every request message is dispatched into the protocol handler, and the
// response(s) are written back over the same HTTP response. There is no
// server-side session store: a client-supplied Mcp-Session-Id header is
// echoed verbatim, and a fresh id is generated only when an initialize
// batch arrives without one. Session ids are never validated against prior
// existence.
//
// Non-POST methods on the endpoint are rejected with 405, OPTIONS succeeds
// anywhere for CORS preflight, and permissive CORS headers are attached to
// every response. Failures that occur before any response bytes are written
// produce a JSON-RPC -32603 envelope with a null id and a generic message;
// the underlying cause is only logged.
package statelesshttp
