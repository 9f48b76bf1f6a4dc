package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/adkchat/relay"
)

// Stream implements [relay.Stream] by wrapping the genai SDK's streaming
// iterator. The SDK pushes whole responses; Stream pulls them on demand,
// splits multi-part responses into one event per Next call, and accumulates
// the final [relay.AssistantMessage] as fragments arrive.
type Stream struct {
	ctx  context.Context
	pull func() (*genai.GenerateContentResponse, error, bool)
	stop func()

	state   relay.StreamState
	msg     relay.AssistantMessage
	err     error
	pending []relay.Event
	finish  genai.FinishReason
	textIdx int // index of the open text block in msg.Content, -1 when none
}

// Interface compliance check.
var _ relay.Stream = (*Stream)(nil)

// NewStreamFromIter wraps a genai response iterator in a Stream.
// Exported for testing with synthetic iterators.
func NewStreamFromIter(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *Stream {
	next, stop := iter.Pull2(iterFn)
	return &Stream{
		ctx:     ctx,
		pull:    next,
		stop:    stop,
		state:   relay.StreamStateNew,
		textIdx: -1,
	}
}

func (s *Stream) Next() (relay.Event, error) {
	switch s.state {
	case relay.StreamStateComplete:
		return nil, io.EOF
	case relay.StreamStateError:
		return nil, s.err
	case relay.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", relay.ErrStreamClosed)
	}

	if len(s.pending) > 0 {
		return s.take(), nil
	}

	for {
		if s.ctx.Err() != nil {
			return nil, s.terminate(s.ctx.Err())
		}
		resp, err, ok := s.pull()
		if !ok {
			s.finalize()
			return nil, io.EOF
		}
		if err != nil {
			return nil, s.terminate(err)
		}
		if resp == nil {
			continue
		}
		if err := s.ingest(resp); err != nil {
			return nil, s.terminate(err)
		}
		s.state = relay.StreamStateStreaming
		if len(s.pending) > 0 {
			return s.take(), nil
		}
		// Usage-only or empty response; keep pulling.
	}
}

func (s *Stream) State() relay.StreamState {
	return s.state
}

func (s *Stream) Message() (relay.AssistantMessage, error) {
	if s.state == relay.StreamStateNew {
		return relay.AssistantMessage{}, fmt.Errorf("gemini: %w", relay.ErrStreamNotReady)
	}
	return s.msg, nil
}

func (s *Stream) Close() error {
	if s.state == relay.StreamStateNew || s.state == relay.StreamStateStreaming {
		s.state = relay.StreamStateClosed
		s.msg.StopReason = relay.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func (s *Stream) take() relay.Event {
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev
}

// ingest folds one SDK response into the pending event queue and the
// accumulating message. A response may carry several parts; each becomes
// its own event.
func (s *Stream) ingest(resp *genai.GenerateContentResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified && len(resp.Candidates) == 0 {
		s.msg.RawStopReason = string(resp.PromptFeedback.BlockReason)
		return fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if resp.UsageMetadata != nil {
		// Last report wins; Gemini sends cumulative counts.
		s.msg.Usage = convertUsage(resp.UsageMetadata)
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if cand.FinishReason != "" {
			s.finish = cand.FinishReason
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if err := s.processPart(part); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Stream) processPart(part *genai.Part) error {
	switch {
	case part.FunctionCall != nil:
		args := json.RawMessage("{}")
		if part.FunctionCall.Args != nil {
			raw, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return fmt.Errorf("invalid tool call arguments: %w", err)
			}
			args = raw
		}
		id := part.FunctionCall.ID
		if id == "" {
			// Gemini omits call IDs; results still need one to correlate.
			id = "call-" + uuid.NewString()[:8]
		}
		s.textIdx = -1
		s.msg.Content = append(s.msg.Content, relay.ToolCallBlock{
			ID:        id,
			Name:      part.FunctionCall.Name,
			Arguments: args,
		})
		s.pending = append(s.pending, relay.EventToolCall{
			ID:   id,
			Name: part.FunctionCall.Name,
			Args: args,
		})
	case part.Thought:
		// Reasoning parts are not surfaced.
	case part.Text != "":
		s.appendText(part.Text)
		s.pending = append(s.pending, relay.EventTextDelta{Delta: part.Text})
	}
	return nil
}

// appendText grows the open text block, or opens a new one if the last
// block was a tool call.
func (s *Stream) appendText(text string) {
	if s.textIdx >= 0 {
		tb := s.msg.Content[s.textIdx].(relay.TextBlock)
		s.msg.Content[s.textIdx] = relay.TextBlock{Text: tb.Text + text}
		return
	}
	s.msg.Content = append(s.msg.Content, relay.TextBlock{Text: text})
	s.textIdx = len(s.msg.Content) - 1
}

// finalize runs on clean iterator exhaustion and resolves the stop reason.
func (s *Stream) finalize() {
	s.state = relay.StreamStateComplete
	s.stop()

	hasToolCalls := false
	for _, b := range s.msg.Content {
		if _, ok := b.(relay.ToolCallBlock); ok {
			hasToolCalls = true
			break
		}
	}

	switch s.finish {
	case "", genai.FinishReasonStop:
		if hasToolCalls {
			s.msg.StopReason = relay.StopToolUse
		} else {
			s.msg.StopReason = relay.StopEndTurn
		}
		if s.finish == "" {
			s.msg.RawStopReason = "end_turn"
		} else {
			s.msg.RawStopReason = string(s.finish)
		}
	case genai.FinishReasonMaxTokens:
		s.msg.StopReason = relay.StopLength
		s.msg.RawStopReason = string(s.finish)
	case genai.FinishReasonSafety, genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII, genai.FinishReasonMalformedFunctionCall:
		s.msg.StopReason = relay.StopError
		s.msg.RawStopReason = string(s.finish)
	default:
		s.msg.StopReason = relay.StopUnknown
		s.msg.RawStopReason = string(s.finish)
	}
}

// terminate moves the stream to the error state. Context cancellation maps
// to StopAborted; anything else is a provider failure, classified by whether
// output had started.
func (s *Stream) terminate(cause error) error {
	prev := s.state
	s.state = relay.StreamStateError
	s.stop()

	if s.ctx.Err() != nil {
		s.msg.StopReason = relay.StopAborted
		s.msg.RawStopReason = "aborted"
		s.err = fmt.Errorf("gemini: %w", s.ctx.Err())
		return s.err
	}

	s.msg.StopReason = relay.StopError
	if s.msg.RawStopReason == "" {
		s.msg.RawStopReason = "error"
	}
	sentinel := relay.ErrProviderInterrupted
	if prev == relay.StreamStateNew {
		sentinel = relay.ErrProviderUnavailable
	}
	s.err = fmt.Errorf("gemini: %v: %w", cause, sentinel)
	return s.err
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) relay.Usage {
	cached := int(u.CachedContentTokenCount)
	input := int(u.PromptTokenCount) - cached
	if input < 0 {
		input = 0
	}
	return relay.Usage{
		InputTokens:     input,
		OutputTokens:    int(u.CandidatesTokenCount),
		CacheReadTokens: cached,
	}
}
