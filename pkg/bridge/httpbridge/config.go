package httpbridge

import "time"

// DefaultTimeout bounds a call whose context carries no deadline.
// Completions can be slow, especially with long conversations.
const DefaultTimeout = 5 * time.Minute

// Config is the HTTP bridge configuration.
type Config struct {
	// BaseURL of the host (e.g., "http://127.0.0.1:6061")
	BaseURL string

	// Timeout applies when the call's context has no deadline.
	// Zero uses DefaultTimeout.
	Timeout time.Duration

	// UserAgent sent with every invocation. Empty uses fasthttp's default.
	UserAgent string
}
