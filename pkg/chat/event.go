package chat

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the payload carried by one streamed record.
type EventType string

const (
	// EventStart is the first event of a stream; it establishes the
	// conversation identity.
	EventStart EventType = "start"

	// EventContent carries an incremental fragment of assistant output.
	EventContent EventType = "content"

	// EventComplete carries the authoritative, final message list for the
	// turn. Terminal.
	EventComplete EventType = "complete"

	// EventError signals a stream-level failure. Terminal.
	EventError EventType = "error"
)

// StreamEvent is the decoded payload of one streamed record. Which fields
// are populated depends on Type:
//
//	start:    ConversationID
//	content:  Chunk
//	complete: ConversationID, Messages
//	error:    Error (optional)
//
// Types outside the known set decode fine and are forwarded to event hooks
// for extensibility, but never mutate session state.
type StreamEvent struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Chunk          string    `json:"chunk,omitempty"`
	Messages       []Message `json:"messages,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Terminal reports whether no further events are applied after this one.
func (e *StreamEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// ParseEvent decodes one record's data payload into a StreamEvent.
// A payload that is not valid JSON, or that carries no type discriminator,
// is a decode failure: the caller drops the record and keeps streaming.
// Decoding never yields a partially-populated event for a malformed payload.
func ParseEvent(data string) (*StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return nil, fmt.Errorf("decoding stream event: %w", err)
	}

	if ev.Type == "" {
		return nil, fmt.Errorf("stream event missing type discriminator")
	}

	return &ev, nil
}
