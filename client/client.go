// Package client is a Go client for the relay API. It mirrors the Kit GUI's
// backend client: POST the chat request, then scan the NDJSON response line
// by line as a pull stream.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adkchat/relay"
)

const (
	// defaultTimeout covers the whole exchange, including reading the
	// stream to its end.
	defaultTimeout = 5 * time.Minute

	maxLineBytes = 1 << 20
)

// Client talks to a relay service. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream opens a streaming chat exchange. The caller must Close the
// returned stream. Rejected requests surface as errors wrapping
// relay.ErrValidation (400) or relay.ErrProviderUnavailable (502).
func (c *Client) Stream(ctx context.Context, req relay.ChatRequest) (*Stream, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Stream{body: resp.Body, scanner: scanner}, nil
}

// Chat sends a request and collects the streamed text into one string. On a
// stream error it returns the text received so far alongside the error.
func (c *Client) Chat(ctx context.Context, req relay.ChatRequest) (string, error) {
	stream, err := c.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		if chunk.Failed() {
			return sb.String(), fmt.Errorf("client: stream error: %s", chunk.Error)
		}
		sb.WriteString(chunk.Content)
	}
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (relay.HealthStatus, error) {
	var hs relay.HealthStatus
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return hs, fmt.Errorf("client: %w", err)
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return hs, fmt.Errorf("client: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hs, fmt.Errorf("client: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return hs, fmt.Errorf("client: decode health: %w", err)
	}
	return hs, nil
}

// Ping reports whether the service is reachable at all.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: unexpected status %s", resp.Status)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var er relay.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return fmt.Errorf("client: unexpected status %s", resp.Status)
	}
	detail := er.Error
	if er.Detail != "" {
		detail = er.Detail
	}
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("client: %s: %w", detail, relay.ErrValidation)
	case http.StatusBadGateway:
		return fmt.Errorf("client: %s: %w", detail, relay.ErrProviderUnavailable)
	default:
		return fmt.Errorf("client: %s (status %d)", detail, resp.StatusCode)
	}
}

// Stream reads chunk lines from an open chat response. Not safe for
// concurrent use.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// Next returns the next chunk, or io.EOF after the terminal chunk. The
// terminal chunk itself is returned to the caller; lines after it are never
// read. A body that ends without a terminal chunk yields
// io.ErrUnexpectedEOF.
func (s *Stream) Next() (relay.StreamChunk, error) {
	if s.done {
		return relay.StreamChunk{}, io.EOF
	}
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk relay.StreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.done = true
			return relay.StreamChunk{}, fmt.Errorf("client: decode chunk: %w", err)
		}
		if chunk.Terminal() {
			s.done = true
		}
		return chunk, nil
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return relay.StreamChunk{}, fmt.Errorf("client: read stream: %w", err)
	}
	return relay.StreamChunk{}, io.ErrUnexpectedEOF
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	return s.body.Close()
}
