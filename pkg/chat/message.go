package chat

import (
	"encoding/json"
	"strconv"
)

// Message is a single role/content entry in a conversation. The client passes
// messages through without inspecting them.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Well-known message roles. Nothing in this package enforces them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationID identifies a conversation thread. It holds the JSON token
// exactly as the host issued it, so a host that numbers its conversations
// gets numbers back and a host that names them gets strings back. The zero
// value encodes as null.
type ConversationID struct {
	token string
}

// StringID returns the id for a host that issues string tokens.
func StringID(s string) ConversationID {
	data, _ := json.Marshal(s)
	return ConversationID{token: string(data)}
}

// NumberID returns the id for a host that issues numeric tokens.
func NumberID(n uint64) ConversationID {
	return ConversationID{token: strconv.FormatUint(n, 10)}
}

// ParseConversationID turns typed-in text into an id. Text that is a JSON
// number or a quoted JSON string is taken as that token; anything else is
// taken as a plain string.
func ParseConversationID(s string) ConversationID {
	if s != "" && json.Valid([]byte(s)) {
		switch c := s[0]; {
		case c == '"', c == '-', c >= '0' && c <= '9':
			return ConversationID{token: s}
		}
	}
	return StringID(s)
}

// IsZero reports whether the id holds no token.
func (id ConversationID) IsZero() bool {
	return id.token == ""
}

// String returns the id for display: string tokens unquoted, other tokens
// as written.
func (id ConversationID) String() string {
	if len(id.token) > 0 && id.token[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(id.token), &s); err == nil {
			return s
		}
	}
	return id.token
}

// MarshalJSON writes the token as issued.
func (id ConversationID) MarshalJSON() ([]byte, error) {
	if id.token == "" {
		return []byte("null"), nil
	}
	return []byte(id.token), nil
}

// UnmarshalJSON keeps the token as issued. null leaves the zero id.
func (id *ConversationID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ConversationID{}
		return nil
	}
	*id = ConversationID{token: string(data)}
	return nil
}
