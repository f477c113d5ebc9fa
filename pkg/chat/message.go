// Package chat defines the conversation domain types and the wire shapes
// exchanged with the dalia backend: messages, the request/response bodies of
// the chat endpoints, and the typed events carried by the streaming endpoint.
package chat

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation. A message is
// immutable once finalized; while streaming, the in-progress assistant
// message grows by successive chunk appends until the terminal event.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message with the given content.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message with the given content.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
