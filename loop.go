package relay

import (
	"context"
	"io"
	"strings"
	"time"
)

// Loop orchestrates the conversation between a Provider and a ToolExecutor.
type Loop struct {
	provider Provider
	executor ToolExecutor
}

// NewLoop creates a new Loop with the given provider and tool executor.
func NewLoop(provider Provider, executor ToolExecutor) *Loop {
	return &Loop{provider: provider, executor: executor}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(Event)
}

// WithEventHandler sets a callback that receives each streaming event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// Run executes the conversation loop. It sends the request's messages to the
// provider, streams the response, executes any tool calls, and repeats until
// the model stops requesting tools. The caller's request is not mutated; the
// transcript grows only in a per-run copy. Returns the final assistant
// message, or the last partial one alongside the error that ended the run.
func (l *Loop) Run(ctx context.Context, req Request, opts ...RunOption) (AssistantMessage, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	msgs := append([]Message(nil), req.Messages...)

	var last AssistantMessage
	for {
		req.Messages = msgs
		msg, results, err := l.turn(ctx, req, &cfg)
		if err != nil {
			return msg, err
		}
		last = msg
		if len(results) == 0 {
			return last, nil
		}
		msgs = append(msgs, msg)
		for _, trm := range results {
			msgs = append(msgs, trm)
		}
	}
}

// turn runs a single provider turn and executes any requested tools. It
// returns the assistant message and the tool result messages to append to
// the transcript. An empty result slice means the loop should stop.
func (l *Loop) turn(ctx context.Context, req Request, cfg *runConfig) (AssistantMessage, []ToolResultMessage, error) {
	if err := ctx.Err(); err != nil {
		return AssistantMessage{}, nil, err
	}

	stream, err := l.provider.Stream(ctx, req)
	if err != nil {
		return AssistantMessage{}, nil, err
	}
	defer stream.Close()

	// Drain the stream, forwarding events to the handler if set.
	var streamErr error
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}

	// Get the assembled message (partial or complete).
	msg, msgErr := stream.Message()
	if msgErr != nil {
		if streamErr != nil {
			return AssistantMessage{}, nil, streamErr
		}
		return AssistantMessage{}, nil, msgErr
	}
	if streamErr != nil {
		return msg, nil, streamErr
	}

	// Extract tool calls from the response.
	var toolCalls []ToolCallBlock
	for _, block := range msg.Content {
		if tc, ok := block.(ToolCallBlock); ok {
			toolCalls = append(toolCalls, tc)
		}
	}
	if len(toolCalls) == 0 {
		return msg, nil, nil
	}

	results := make([]ToolResultMessage, 0, len(toolCalls))
	for _, tc := range toolCalls {
		result, execErr := l.executor.Execute(ctx, tc.Name, tc.Arguments)
		if execErr != nil {
			result = TextResult(execErr.Error(), true)
		}

		trm := ToolResultMessage{
			ToolCallID: tc.ID,
			ToolName:   tc.Name,
			Content:    result.Content,
			IsError:    result.IsError,
			Timestamp:  time.Now(),
		}
		results = append(results, trm)

		if cfg.onEvent != nil {
			var sb strings.Builder
			for _, b := range result.Content {
				if tb, ok := b.(TextBlock); ok {
					if sb.Len() > 0 {
						sb.WriteByte('\n')
					}
					sb.WriteString(tb.Text)
				}
			}
			cfg.onEvent(EventToolResult{
				ID:      tc.ID,
				Name:    tc.Name,
				Content: sb.String(),
				IsError: result.IsError,
			})
		}
	}

	return msg, results, nil
}
