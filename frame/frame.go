// Package frame converts stream events into the NDJSON chunk schema served
// over HTTP. A Framer stamps each chunk with a fresh UUID, counts what it
// emits, and builds the terminal chunk; Stream adapts a [relay.Stream] into
// a pull sequence of framed chunks.
package frame

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/adkchat/relay"
)

// Framer builds wire chunks from stream fragments and events. It is
// stateful: the terminal chunk reports how many chunks preceded it. Not safe
// for concurrent use; each request gets its own Framer.
type Framer struct {
	conversationID string
	typed          bool
	count          int
	toolCalls      int
}

// Option configures a [Framer].
type Option func(*Framer)

// WithConversationID echoes the caller's conversation ID in the terminal
// chunk metadata.
func WithConversationID(id string) Option {
	return func(f *Framer) { f.conversationID = id }
}

// Typed switches the framer to the tool-event schema: every chunk carries a
// type discriminator and the terminal chunk is type "end" with a tool call
// count.
func Typed() Option {
	return func(f *Framer) { f.typed = true }
}

// New creates a Framer.
func New(opts ...Option) *Framer {
	f := &Framer{}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Count reports the number of non-terminal chunks emitted so far.
func (f *Framer) Count() int { return f.count }

// ToolCalls reports the number of tool_call chunks emitted so far.
func (f *Framer) ToolCalls() int { return f.toolCalls }

// Fragment frames one text fragment. Empty fragments still produce a chunk;
// the model is allowed to emit them.
func (f *Framer) Fragment(text string) relay.StreamChunk {
	f.count++
	ch := relay.StreamChunk{
		ChunkID: uuid.NewString(),
		Content: text,
	}
	if f.typed {
		ch.Type = relay.ChunkTextDelta
	}
	return ch
}

// Event frames a stream event. The second return is false for event kinds
// that have no wire representation.
func (f *Framer) Event(ev relay.Event) (relay.StreamChunk, bool) {
	switch e := ev.(type) {
	case relay.EventTextDelta:
		return f.Fragment(e.Delta), true
	case relay.EventToolCall:
		f.count++
		f.toolCalls++
		return relay.StreamChunk{
			Type:    relay.ChunkToolCall,
			ChunkID: uuid.NewString(),
			Tool:    e.Name,
			CallID:  e.ID,
			Params:  e.Args,
		}, true
	case relay.EventToolResult:
		f.count++
		return relay.StreamChunk{
			Type:    relay.ChunkToolResult,
			ChunkID: uuid.NewString(),
			Tool:    e.Name,
			CallID:  e.ID,
			Result:  resultJSON(e.Content),
		}, true
	default:
		return relay.StreamChunk{}, false
	}
}

// Terminal builds the single closing chunk. Its metadata carries the count
// of chunks that preceded it, and the conversation ID when one was supplied.
func (f *Framer) Terminal() relay.StreamChunk {
	meta := map[string]any{"total_chunks": f.count}
	if f.conversationID != "" {
		meta["conversation_id"] = f.conversationID
	}
	ch := relay.StreamChunk{
		ChunkID:  uuid.NewString(),
		Done:     true,
		Metadata: meta,
	}
	if f.typed {
		ch.Type = relay.ChunkEnd
		meta["total_tool_calls"] = f.toolCalls
	}
	return ch
}

// ErrorChunk builds the final line for a stream that failed after output
// started. It is done-marked but carries the error instead of totals, so
// clients can tell interruption from completion.
func (f *Framer) ErrorChunk(err error) relay.StreamChunk {
	ch := relay.StreamChunk{
		ChunkID: uuid.NewString(),
		Done:    true,
		Error:   err.Error(),
	}
	if f.typed {
		ch.Type = relay.ChunkError
	}
	return ch
}

// resultJSON passes through tool output that is already JSON and quotes
// plain text.
func resultJSON(content string) json.RawMessage {
	if json.Valid([]byte(content)) {
		return json.RawMessage(content)
	}
	quoted, _ := json.Marshal(content)
	return quoted
}
