// Package session owns per-conversation chat state. The Controller issues
// one outbound request at a time (streaming or fallback), folds the resulting
// events into its state in arrival order, and hands immutable snapshots to
// subscribers.
package session

import "github.com/alexgoodison/dalia/pkg/chat"

// OptimisticMessage is a locally-held message shown before the terminal
// event confirms it. Pending marks the in-progress assistant message that
// grows chunk by chunk until finalized.
type OptimisticMessage struct {
	chat.Message

	Pending bool `json:"pending,omitempty"`
}

// State is the observable session state. The Controller is its only writer;
// subscribers receive deep copies via Snapshot.
type State struct {
	// ConversationID is set the first time a start or complete event (or a
	// fallback response) names it and never reverts to unset afterwards.
	ConversationID string

	// Messages holds the optimistic message list. At most the final entry
	// is pending.
	Messages []OptimisticMessage

	// Err is the last call-level error text. Retained until the next
	// successful terminal event or an explicit ClearError.
	Err string

	// Sending is true for the entire duration of one in-flight request.
	Sending bool
}

// clone deep-copies the state so callers can never alias the live message
// slice.
func (s State) clone() State {
	out := s
	out.Messages = make([]OptimisticMessage, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// finalized converts an authoritative message list into non-pending
// optimistic entries, replacing whatever was held before.
func finalized(messages []chat.Message) []OptimisticMessage {
	out := make([]OptimisticMessage, len(messages))
	for i, m := range messages {
		out[i] = OptimisticMessage{Message: m}
	}
	return out
}
