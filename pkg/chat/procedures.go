package chat

// Procedure names understood by the host.
const (
	ProcCompletion        = "completion"
	ProcStartConversation = "start_conversation"
	ProcGetConversations  = "get_conversations"
	ProcGetConversation   = "get_conversation"
	ProcGetTitle          = "get_title"
	ProcSetTitle          = "set_title"
	ProcSuggestTitle      = "suggest_title"
	ProcGetBundledPrompts = "get_bundled_prompts"
	ProcGenerateImage     = "generate_image"
)

