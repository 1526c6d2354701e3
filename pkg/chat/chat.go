// Package chat is the client side of the chat host: one method per remote
// procedure, each forwarding its arguments over a bridge.Bridge and handing
// back whatever the host answered.
//
// The client adds no retries, caching, batching, validation or logging.
// Failures reported by the bridge are returned unchanged.
//
// Every method takes a context. If the context is done before the host
// answers, the method returns ctx.Err() right away. The remote call is not
// stopped by this: the host may still complete the operation, and its
// eventual answer is dropped. A context that is already done issues no call.
//
// Results with a Go type are decoded with encoding/json rules: a null result
// yields the zero value, and a result that is empty or does not fit the type
// is a bridge.Error of kind serialization. Opaque results are returned as the
// host encoded them.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

// Client invokes chat procedures through a bridge. It holds no state besides
// the bridge and is safe for concurrent use.
type Client struct {
	bridge bridge.Bridge
}

// New creates a Client that sends every call through b.
func New(b bridge.Bridge) *Client {
	return &Client{bridge: b}
}

// Completion asks the host for the next reply in conversation id.
func (c *Client) Completion(ctx context.Context, id ConversationID, messages []Message) (Message, error) {
	result, err := c.invoke(ctx, ProcCompletion, CompletionArgs{ID: id, Messages: messages})
	if err != nil {
		return Message{}, err
	}
	return decode[Message](ProcCompletion, result)
}

// StartConversation asks the host for a new conversation. hint may be nil.
// Whether equal hints yield the same conversation is up to the host. The id
// is returned as the token the host issued, whatever its JSON type.
func (c *Client) StartConversation(ctx context.Context, hint *string) (ConversationID, error) {
	result, err := c.invoke(ctx, ProcStartConversation, StartConversationArgs{Hint: hint})
	if err != nil {
		return ConversationID{}, err
	}
	return decode[ConversationID](ProcStartConversation, result)
}

// Conversations returns the host's conversation summaries.
func (c *Client) Conversations(ctx context.Context) ([]json.RawMessage, error) {
	result, err := c.invoke(ctx, ProcGetConversations, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]json.RawMessage](ProcGetConversations, result)
}

// Conversation returns the full record of conversation id.
func (c *Client) Conversation(ctx context.Context, id ConversationID) (json.RawMessage, error) {
	return c.invoke(ctx, ProcGetConversation, ConversationArgs{ID: id})
}

// Title returns the title of conversation id. A host answering null gets
// the empty string, the same as an empty title.
func (c *Client) Title(ctx context.Context, id ConversationID) (string, error) {
	result, err := c.invoke(ctx, ProcGetTitle, ConversationArgs{ID: id})
	if err != nil {
		return "", err
	}
	return decode[string](ProcGetTitle, result)
}

// SetTitle sets the title of conversation id and returns the host's
// acknowledgment.
func (c *Client) SetTitle(ctx context.Context, id ConversationID, title string) (json.RawMessage, error) {
	return c.invoke(ctx, ProcSetTitle, SetTitleArgs{ID: id, Title: title})
}

// SuggestTitle asks the host to propose a title for conversation id. A null
// answer yields the empty string.
func (c *Client) SuggestTitle(ctx context.Context, id ConversationID) (string, error) {
	result, err := c.invoke(ctx, ProcSuggestTitle, ConversationArgs{ID: id})
	if err != nil {
		return "", err
	}
	return decode[string](ProcSuggestTitle, result)
}

// BundledPrompts returns the prompt definitions bundled with the host.
func (c *Client) BundledPrompts(ctx context.Context) ([]json.RawMessage, error) {
	result, err := c.invoke(ctx, ProcGetBundledPrompts, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]json.RawMessage](ProcGetBundledPrompts, result)
}

// GenerateImage forwards req to the host's image generator.
func (c *Client) GenerateImage(ctx context.Context, req json.RawMessage) (json.RawMessage, error) {
	return c.invoke(ctx, ProcGenerateImage, GenerateImageArgs{Req: req})
}

type reply struct {
	result json.RawMessage
	err    error
}

// invoke issues exactly one bridge call and waits for it, or for ctx.
func (c *Client) invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	if ctx.Done() == nil {
		return c.bridge.Invoke(ctx, procedure, args)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan reply, 1)
	go func() {
		result, err := c.bridge.Invoke(ctx, procedure, args)
		done <- reply{result: result, err: err}
	}()

	select {
	case r := <-done:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func decode[T any](procedure string, result json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(result, &v); err != nil {
		return v, &bridge.Error{
			Procedure: procedure,
			Kind:      bridge.KindSerialization,
			Err:       fmt.Errorf("decode result: %w", err),
		}
	}
	return v, nil
}
