package chat

import "encoding/json"

// CompletionArgs are the arguments of the "completion" procedure.
type CompletionArgs struct {
	ID       ConversationID `json:"id"`
	Messages []Message      `json:"messages"`
}

// StartConversationArgs are the arguments of the "start_conversation"
// procedure. A nil Hint is left out of the encoded arguments entirely.
type StartConversationArgs struct {
	Hint *string `json:"hint,omitempty"`
}

// ConversationArgs address a single conversation. They are shared by
// "get_conversation", "get_title" and "suggest_title".
type ConversationArgs struct {
	ID ConversationID `json:"id"`
}

// SetTitleArgs are the arguments of the "set_title" procedure.
type SetTitleArgs struct {
	ID    ConversationID `json:"id"`
	Title string         `json:"title"`
}

// GenerateImageArgs are the arguments of the "generate_image" procedure.
// Req is forwarded without interpretation.
type GenerateImageArgs struct {
	Req json.RawMessage `json:"req"`
}
