package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/sse"
)

// Stream issues the streaming chat request and returns an EventStream over
// the response body. It fails fast, without handing out a stream, when the
// request cannot be issued, the response status is not OK, or the response
// carries no body.
func (c *Client) Stream(ctx context.Context, req *chat.SendRequest) (*EventStream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatStreamPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("sending streaming chat request",
		"target", c.baseURL,
		"conversation_id", req.ConversationID,
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		return nil, statusError(httpResp)
	}

	if httpResp.Body == nil || httpResp.Body == http.NoBody {
		return nil, fmt.Errorf("backend response has no body")
	}

	return &EventStream{
		body:   httpResp.Body,
		reader: sse.NewReader(httpResp.Body),
		logger: c.logger,
	}, nil
}

// EventStream yields typed chat events from one streaming response. The
// caller owns the stream and must Close it on every exit path.
type EventStream struct {
	body   io.ReadCloser
	reader *sse.Reader
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Next returns the next decoded event, blocking until one is available.
// Records whose payload does not decode as a stream event are dropped and
// streaming continues; one bad record never aborts the stream.
// Next returns nil, nil when the stream ends.
func (s *EventStream) Next() (*chat.StreamEvent, error) {
	for {
		raw, err := s.reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if raw == nil {
			return nil, nil
		}

		ev, err := chat.ParseEvent(raw.Data)
		if err != nil {
			s.logger.Debug("dropping undecodable stream record",
				"error", err,
				"data", raw.Data,
			)
			continue
		}

		return ev, nil
	}
}

// Close releases the underlying response body. Safe to call more than once.
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
