package chat

// SendRequest is the body of both the fallback and the streaming chat
// endpoints. ConversationID is empty when starting a new conversation; the
// backend assigns one and reports it in the response or the start event.
type SendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}
