package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/chat/client"
	"github.com/alexgoodison/dalia/pkg/logger"
)

// ErrSendInFlight is returned when Submit or Hydrate is called while a
// request is already in flight. The controller rejects overlapping calls
// outright rather than queueing or racing them.
var ErrSendInFlight = errors.New("a send is already in flight")

// DefaultStreamErrText is shown when the backend signals a stream-level
// error without a message of its own.
const DefaultStreamErrText = "Something went wrong. Please try again."

// Mode selects the delivery mode for one Submit call.
type Mode int

const (
	// ModeAuto streams whenever an event hook is supplied, and falls back
	// to the single-shot exchange otherwise.
	ModeAuto Mode = iota

	// ModeStreaming forces the incremental event stream.
	ModeStreaming

	// ModeFallback forces the single request/response exchange.
	ModeFallback
)

// SubmitOptions configures one Submit call. All hooks are optional and are
// invoked on the calling goroutine, in event arrival order.
type SubmitOptions struct {
	// ConversationID continues an existing conversation. Empty means reuse
	// the controller's current conversation, or start a new one.
	ConversationID string

	// Mode selects streaming vs fallback delivery.
	Mode Mode

	// OnBeforeSend is invoked with the trimmed message before any request
	// is issued.
	OnBeforeSend func(message string)

	// OnEvent receives every streamed event verbatim, including types the
	// controller does not act on.
	OnEvent func(ev *chat.StreamEvent)

	// OnResponse is invoked with the finalized conversation on terminal
	// success in either mode.
	OnResponse func(resp *chat.SendResponse)

	// OnError is invoked with a human-readable error on any call-level
	// failure.
	OnError func(err error)
}

// Controller owns one conversation's session state and orchestrates a single
// in-flight request against the backend.
type Controller struct {
	client *client.Client
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// Option configures a Controller created with NewController.
type Option func(*Controller)

// WithConversationID seeds the controller with a known prior conversation.
func WithConversationID(id string) Option {
	return func(c *Controller) {
		c.state.ConversationID = id
	}
}

// WithLogger sets the controller's logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a Controller backed by the given client.
func NewController(cl *client.Client, opts ...Option) *Controller {
	c := &Controller{
		client: cl,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// IsSending reports whether a request is in flight.
func (c *Controller) IsSending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Sending
}

// ClearError discards the retained error text.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Err = ""
}

// Submit sends one message to the backend and folds the reply into session
// state. An empty or whitespace-only message is a silent no-op. A Submit
// while another is in flight returns ErrSendInFlight without touching state
// or firing hooks.
//
// On any failure the error is recorded in state, reported to OnError, and
// returned to the caller after cleanup.
func (c *Controller) Submit(ctx context.Context, message string, opts SubmitOptions) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	c.mu.Lock()
	if c.state.Sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.state.Sending = true
	c.state.Err = ""
	convID := opts.ConversationID
	if convID == "" {
		convID = c.state.ConversationID
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.Sending = false
		c.mu.Unlock()
	}()

	if opts.OnBeforeSend != nil {
		opts.OnBeforeSend(message)
	}

	// The user's line appears immediately, ahead of any network round trip,
	// together with the empty assistant entry that streamed chunks grow.
	c.mu.Lock()
	c.state.Messages = append(c.state.Messages,
		OptimisticMessage{Message: chat.NewUserMessage(message)},
		OptimisticMessage{Message: chat.NewAssistantMessage(""), Pending: true},
	)
	c.mu.Unlock()

	req := &chat.SendRequest{
		Message:        message,
		ConversationID: convID,
	}

	streaming := opts.Mode == ModeStreaming || (opts.Mode == ModeAuto && opts.OnEvent != nil)

	requestID := uuid.NewString()
	c.logger.Debug("submitting chat message",
		"request_id", requestID,
		"conversation_id", convID,
		"streaming", streaming,
	)

	if streaming {
		return c.submitStreaming(ctx, req, opts, requestID)
	}

	return c.submitFallback(ctx, req, opts, requestID)
}

// submitStreaming issues the streaming request and applies events in arrival
// order until a terminal event or end of stream.
func (c *Controller) submitStreaming(ctx context.Context, req *chat.SendRequest, opts SubmitOptions, requestID string) error {
	stream, err := c.client.Stream(ctx, req)
	if err != nil {
		return c.fail(opts, err)
	}
	defer stream.Close()

	for {
		ev, err := stream.Next()
		if err != nil {
			return c.fail(opts, err)
		}
		if ev == nil {
			return nil
		}

		// Every event is forwarded verbatim, recognized or not.
		if opts.OnEvent != nil {
			opts.OnEvent(ev)
		}

		switch ev.Type {
		case chat.EventStart:
			c.mu.Lock()
			if ev.ConversationID != "" {
				c.state.ConversationID = ev.ConversationID
			}
			c.state.Err = ""
			c.mu.Unlock()

		case chat.EventContent:
			c.appendChunk(ev.Chunk)

		case chat.EventComplete:
			c.mu.Lock()
			if ev.ConversationID != "" {
				c.state.ConversationID = ev.ConversationID
			}
			c.state.Messages = finalized(ev.Messages)
			c.state.Err = ""
			finalID := c.state.ConversationID
			c.mu.Unlock()

			c.logger.Debug("stream completed",
				"request_id", requestID,
				"conversation_id", finalID,
				"message_count", len(ev.Messages),
			)

			if opts.OnResponse != nil {
				opts.OnResponse(&chat.SendResponse{
					ConversationID: finalID,
					Messages:       ev.Messages,
				})
			}
			return nil

		case chat.EventError:
			text := ev.Error
			if text == "" {
				text = DefaultStreamErrText
			}

			c.mu.Lock()
			c.state.Err = text
			c.mu.Unlock()

			// Terminate without processing further fragments.
			err := fmt.Errorf("stream failed: %s", text)
			if opts.OnError != nil {
				opts.OnError(err)
			}
			return err

		default:
			// Unrecognized types only reach the event hook above.
			c.logger.Debug("ignoring unrecognized stream event",
				"request_id", requestID,
				"type", string(ev.Type),
			)
		}
	}
}

// submitFallback performs the single-shot exchange and wraps the response
// into the same terminal state a completed stream produces.
func (c *Controller) submitFallback(ctx context.Context, req *chat.SendRequest, opts SubmitOptions, requestID string) error {
	resp, err := c.client.Send(ctx, req)
	if err != nil {
		return c.fail(opts, err)
	}

	c.mu.Lock()
	if resp.ConversationID != "" {
		c.state.ConversationID = resp.ConversationID
	}
	c.state.Messages = finalized(resp.Messages)
	c.state.Err = ""
	c.mu.Unlock()

	c.logger.Debug("fallback exchange completed",
		"request_id", requestID,
		"conversation_id", resp.ConversationID,
		"message_count", len(resp.Messages),
	)

	if opts.OnResponse != nil {
		opts.OnResponse(resp)
	}
	return nil
}

// Hydrate replaces session state with the stored conversation. It refuses to
// run while a send is in flight.
func (c *Controller) Hydrate(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	if c.state.Sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.mu.Unlock()

	resp, err := c.client.History(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("hydrating conversation: %w", err)
	}

	c.mu.Lock()
	if resp.ConversationID != "" {
		c.state.ConversationID = resp.ConversationID
	}
	c.state.Messages = finalized(resp.Messages)
	c.state.Err = ""
	c.mu.Unlock()

	return nil
}

// appendChunk concatenates a content chunk onto the pending assistant entry,
// creating it when absent. The pending entry is always the final one, so
// there is never more than a single pending message.
func (c *Controller) appendChunk(chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.state.Messages); n > 0 && c.state.Messages[n-1].Pending {
		c.state.Messages[n-1].Content += chunk
		return
	}

	c.state.Messages = append(c.state.Messages, OptimisticMessage{
		Message: chat.NewAssistantMessage(chunk),
		Pending: true,
	})
}

// fail records a call-level error, notifies the error hook, and returns the
// error for the caller to handle.
func (c *Controller) fail(opts SubmitOptions, err error) error {
	c.mu.Lock()
	c.state.Err = err.Error()
	c.mu.Unlock()

	if opts.OnError != nil {
		opts.OnError(err)
	}
	return err
}
