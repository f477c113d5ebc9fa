package chat

// SendResponse is the body returned by the fallback chat endpoint and the
// conversation retrieval endpoint. Messages is the authoritative, ordered
// history of the conversation after the exchange.
type SendResponse struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	LatestMessage  *Message  `json:"latest_message,omitempty"`
}

// ErrorResponse is the body the backend returns on request-level failures.
// Detail carries the human-readable failure message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
