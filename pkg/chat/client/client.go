// Package client provides the HTTP client for the dalia chat backend: the
// non-streaming fallback exchange, the streaming event exchange, and
// conversation history retrieval.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/logger"
	"github.com/alexgoodison/dalia/pkg/utils"
)

const (
	chatPath       = "/chat"
	chatStreamPath = "/chat/stream"

	// errorBodySnippet caps how much of an error response body is quoted
	// back in error messages.
	errorBodySnippet = 512
)

// Client talks to a dalia chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client created with New.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client's logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for the backend at baseURL (scheme + host + port).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Agent responses can be slow
			Timeout: 5 * time.Minute,
		},
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send performs the non-streaming request/response exchange. The response is
// the authoritative conversation state after the turn, shaped identically to
// a completed stream.
func (c *Client) Send(ctx context.Context, req *chat.SendRequest) (*chat.SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending chat request",
		"target", c.baseURL,
		"conversation_id", req.ConversationID,
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError(httpResp)
	}

	var resp chat.SendResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &resp, nil
}

// History retrieves the stored message list for a conversation.
func (c *Client) History(ctx context.Context, conversationID string) (*chat.SendResponse, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	target := c.baseURL + chatPath + "/" + url.PathEscape(conversationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError(httpResp)
	}

	var resp chat.SendResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &resp, nil
}

// statusError builds an error from a non-200 response. The backend signals
// failures as {"detail": "..."}; when the body matches that shape the detail
// message is surfaced directly, otherwise a raw snippet of the body is quoted
// for debuggability.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodySnippet))

	var errResp chat.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, errResp.Detail)
	}

	return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, utils.Truncate(strings.TrimSpace(string(body)), errorBodySnippet))
}
