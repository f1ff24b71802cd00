package mcpservice

import "fmt"

// NotFoundError reports a lookup miss for a tool name or resource URI. It
// is surfaced to the caller as a JSON-RPC invalid-params error naming the
// requested key.
type NotFoundError struct {
	Kind string // "tool" or "resource"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ValidationError reports tool arguments that do not satisfy the input
// schema. The request is aborted with no partial response.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}
