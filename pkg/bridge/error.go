package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge failure.
type Kind string

const (
	// KindTransport means the call never reached the host or its answer was lost.
	KindTransport Kind = "transport"

	// KindBackend means the host received the call and rejected it.
	KindBackend Kind = "backend"

	// KindSerialization means arguments or results could not be encoded or decoded.
	KindSerialization Kind = "serialization"
)

// Error is the single failure kind surfaced through a Bridge.
type Error struct {
	Procedure string
	Kind      Kind

	// Status is the host-reported status code, when the transport has one.
	Status int

	// Message is the host-reported reason for backend failures.
	Message string

	Err error
}

func (e *Error) Error() string {
	reason := e.Message
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	if reason == "" {
		reason = "failed"
	}

	if e.Procedure == "" {
		return fmt.Sprintf("bridge %s error: %s", e.Kind, reason)
	}
	return fmt.Sprintf("bridge %s error in %q: %s", e.Kind, e.Procedure, reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Kind == kind
	}
	return false
}
