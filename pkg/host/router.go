package host

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Handler serves one procedure. args is the raw JSON argument mapping sent by
// the caller ("{}" when the caller sent none). The returned value is encoded
// as the invocation result.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Router maps procedure names to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// HandleRaw registers h for procedure, replacing any earlier handler.
func (r *Router) HandleRaw(procedure string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[procedure] = h
}

// Lookup returns the handler for procedure.
func (r *Router) Lookup(procedure string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[procedure]
	return h, ok
}

// Procedures returns the registered procedure names in sorted order.
func (r *Router) Procedures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ArgumentError reports arguments that could not be decoded for a procedure.
type ArgumentError struct {
	Procedure string
	Err       error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Procedure, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Handle registers a typed handler for procedure. The raw argument mapping is
// decoded into A before fn is called; decode failures are reported as
// *ArgumentError.
func Handle[A, R any](r *Router, procedure string, fn func(ctx context.Context, args A) (R, error)) {
	r.HandleRaw(procedure, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ArgumentError{Procedure: procedure, Err: err}
			}
		}
		return fn(ctx, args)
	})
}

// StatusError lets a handler choose the status code of its failure.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}
