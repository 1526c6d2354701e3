// Package bridge defines the invocation primitive that carries a named
// procedure call and its arguments to a host and returns the host's result.
package bridge

import (
	"context"
	"encoding/json"
)

// Bridge transports a named procedure call to the host.
//
// args is any JSON-marshalable value, or nil for procedures that take no
// arguments. The returned result is the host's JSON-encoded response. Any
// failure is reported as an error; implementations in this module report
// *Error.
type Bridge interface {
	Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error)
}

// Func adapts an ordinary function to the Bridge interface.
type Func func(ctx context.Context, procedure string, args any) (json.RawMessage, error)

// Invoke calls f(ctx, procedure, args).
func (f Func) Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	return f(ctx, procedure, args)
}

// ErrorResponse is the JSON body a host returns for a failed invocation.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
