package mock

import (
	"io"

	"github.com/adkchat/relay"
)

// Interface compliance check.
var _ relay.Stream = (*Stream)(nil)

// Stream is a test double for relay.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn    func() (relay.Event, error)
	StateFn   func() relay.StreamState
	MessageFn func() (relay.AssistantMessage, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (relay.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() relay.StreamState {
	if s.StateFn == nil {
		return relay.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (relay.AssistantMessage, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TextStream builds a Stream that yields the given fragments as text delta
// events in order, then io.EOF. Message() returns the concatenated text
// with StopEndTurn.
func TextStream(fragments ...string) *Stream {
	i := 0
	var full string
	for _, f := range fragments {
		full += f
	}
	return &Stream{
		NextFn: func() (relay.Event, error) {
			if i >= len(fragments) {
				return nil, io.EOF
			}
			evt := relay.EventTextDelta{Delta: fragments[i]}
			i++
			return evt, nil
		},
		StateFn: func() relay.StreamState {
			if i >= len(fragments) {
				return relay.StreamStateComplete
			}
			return relay.StreamStateStreaming
		},
		MessageFn: func() (relay.AssistantMessage, error) {
			return relay.AssistantMessage{
				Content:    []relay.ContentBlock{relay.TextBlock{Text: full}},
				StopReason: relay.StopEndTurn,
			}, nil
		},
	}
}
