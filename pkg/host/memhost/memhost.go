// Package memhost is an in-memory chat host for local development. It
// registers every chat procedure on a host.Router. Conversations are numbered
// from zero and live as long as the process. Completions echo the last user
// message back; no model is called.
package memhost

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/papercomputeco/chatbridge/pkg/chat"
	"github.com/papercomputeco/chatbridge/pkg/host"
)

const (
	codeNotFound    = "not_found"
	codeUnsupported = "unsupported"

	defaultTitle    = "New conversation"
	titleWordBudget = 6
)

// Prompt is a bundled prompt definition.
type Prompt struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// DefaultPrompts are served by get_bundled_prompts unless replaced.
var DefaultPrompts = []Prompt{
	{Name: "translate", Prompt: "Translate the following text to English."},
	{Name: "summarize", Prompt: "Summarize the following text in three sentences."},
	{Name: "proofread", Prompt: "Fix spelling and grammar in the following text."},
}

// Summary is one entry of get_conversations.
type Summary struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// Conversation is the record returned by get_conversation.
type Conversation struct {
	ID       uint64         `json:"id"`
	Title    string         `json:"title"`
	Hint     *string        `json:"hint,omitempty"`
	Messages []chat.Message `json:"messages"`
}

type idArgs struct {
	ID uint64 `json:"id"`
}

type completionArgs struct {
	ID       uint64         `json:"id"`
	Messages []chat.Message `json:"messages"`
}

type setTitleArgs struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// Store holds conversations in memory. It is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	conversations []*Conversation
	prompts       []Prompt
}

// NewStore creates an empty store serving prompts. A nil prompts serves
// DefaultPrompts.
func NewStore(prompts []Prompt) *Store {
	if prompts == nil {
		prompts = DefaultPrompts
	}
	return &Store{prompts: prompts}
}

// Register installs a handler for every chat procedure on r.
func (s *Store) Register(r *host.Router) {
	host.Handle(r, chat.ProcStartConversation, s.startConversation)
	host.Handle(r, chat.ProcGetConversations, s.listConversations)
	host.Handle(r, chat.ProcGetConversation, s.getConversation)
	host.Handle(r, chat.ProcGetTitle, s.getTitle)
	host.Handle(r, chat.ProcSetTitle, s.setTitle)
	host.Handle(r, chat.ProcSuggestTitle, s.suggestTitle)
	host.Handle(r, chat.ProcCompletion, s.completion)
	host.Handle(r, chat.ProcGetBundledPrompts, s.bundledPrompts)
	host.Handle(r, chat.ProcGenerateImage, s.generateImage)
}

func (s *Store) startConversation(_ context.Context, args chat.StartConversationArgs) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint64(len(s.conversations))
	s.conversations = append(s.conversations, &Conversation{
		ID:       id,
		Title:    defaultTitle,
		Hint:     args.Hint,
		Messages: []chat.Message{},
	})
	return id, nil
}

func (s *Store) listConversations(context.Context, struct{}) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.conversations))
	for _, c := range s.conversations {
		summaries = append(summaries, Summary{ID: c.ID, Title: c.Title})
	}
	return summaries, nil
}

func (s *Store) getConversation(_ context.Context, args idArgs) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.lookup(args.ID)
	if err != nil {
		return Conversation{}, err
	}
	record := *c
	record.Messages = append([]chat.Message{}, c.Messages...)
	return record, nil
}

func (s *Store) getTitle(_ context.Context, args idArgs) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.lookup(args.ID)
	if err != nil {
		return "", err
	}
	return c.Title, nil
}

func (s *Store) setTitle(_ context.Context, args setTitleArgs) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(args.ID)
	if err != nil {
		return nil, err
	}
	c.Title = args.Title
	return json.RawMessage("null"), nil
}

func (s *Store) suggestTitle(_ context.Context, args idArgs) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.lookup(args.ID)
	if err != nil {
		return "", err
	}
	for _, m := range c.Messages {
		if m.Role != chat.RoleUser {
			continue
		}
		words := strings.Fields(m.Content)
		if len(words) == 0 {
			continue
		}
		if len(words) > titleWordBudget {
			words = words[:titleWordBudget]
		}
		return strings.Join(words, " "), nil
	}
	return defaultTitle, nil
}

func (s *Store) completion(_ context.Context, args completionArgs) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(args.ID)
	if err != nil {
		return chat.Message{}, err
	}

	reply := chat.Message{Role: chat.RoleAssistant}
	for i := len(args.Messages) - 1; i >= 0; i-- {
		if args.Messages[i].Role == chat.RoleUser {
			reply.Content = args.Messages[i].Content
			break
		}
	}

	// The caller sends the whole conversation; it replaces what is stored.
	c.Messages = append(append([]chat.Message{}, args.Messages...), reply)
	return reply, nil
}

func (s *Store) bundledPrompts(context.Context, struct{}) ([]Prompt, error) {
	return s.prompts, nil
}

func (s *Store) generateImage(context.Context, chat.GenerateImageArgs) (json.RawMessage, error) {
	return nil, &host.StatusError{
		Status:  http.StatusNotImplemented,
		Code:    codeUnsupported,
		Message: "image generation is not available on this host",
	}
}

// lookup must be called with s.mu held.
func (s *Store) lookup(id uint64) (*Conversation, error) {
	if id >= uint64(len(s.conversations)) {
		return nil, &host.StatusError{
			Status:  http.StatusNotFound,
			Code:    codeNotFound,
			Message: "no such conversation",
		}
	}
	return s.conversations[id], nil
}
