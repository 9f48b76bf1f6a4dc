package frame

import (
	"io"

	"github.com/adkchat/relay"
)

// Stream adapts a [relay.Stream] into a pull sequence of wire chunks:
// fragments in arrival order, then exactly one terminal chunk, then io.EOF.
// If the source fails, Next returns the error immediately and the terminal
// chunk is never produced.
type Stream struct {
	src      relay.Stream
	framer   *Framer
	err      error
	terminal bool
}

// NewStream wraps src. Options configure the underlying [Framer].
func NewStream(src relay.Stream, opts ...Option) *Stream {
	return &Stream{
		src:    src,
		framer: New(opts...),
	}
}

// Framer exposes the underlying framer for post-stream accounting.
func (s *Stream) Framer() *Framer { return s.framer }

// Next returns the next framed chunk. After the terminal chunk it returns
// io.EOF; after a source error it keeps returning that error.
func (s *Stream) Next() (relay.StreamChunk, error) {
	if s.err != nil {
		return relay.StreamChunk{}, s.err
	}
	if s.terminal {
		return relay.StreamChunk{}, io.EOF
	}
	for {
		ev, err := s.src.Next()
		if err == io.EOF {
			s.terminal = true
			return s.framer.Terminal(), nil
		}
		if err != nil {
			s.err = err
			return relay.StreamChunk{}, err
		}
		if ch, ok := s.framer.Event(ev); ok {
			return ch, nil
		}
	}
}

// Close releases the underlying stream.
func (s *Stream) Close() error {
	return s.src.Close()
}
