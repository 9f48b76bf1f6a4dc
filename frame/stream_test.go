package frame_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adkchat/relay"
	"github.com/adkchat/relay/frame"
	"github.com/adkchat/relay/mock"
)

// failAfter yields the given fragments, then fails with err on every
// subsequent call.
func failAfter(fragments []string, err error) *mock.Stream {
	i := 0
	return &mock.Stream{
		NextFn: func() (relay.Event, error) {
			if i < len(fragments) {
				ev := relay.EventTextDelta{Delta: fragments[i]}
				i++
				return ev, nil
			}
			return nil, err
		},
	}
}

func collectChunks(t *testing.T, s *frame.Stream) []relay.StreamChunk {
	t.Helper()
	var chunks []relay.StreamChunk
	for {
		ch, err := s.Next()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, ch)
	}
}

func TestStream_FragmentsThenTerminal(t *testing.T) {
	t.Parallel()
	s := frame.NewStream(mock.TextStream("Hel", "lo"))

	chunks := collectChunks(t, s)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Hel", chunks[0].Content)
	assert.False(t, chunks[0].Done)
	assert.Equal(t, "lo", chunks[1].Content)
	assert.False(t, chunks[1].Done)

	term := chunks[2]
	assert.True(t, term.Done)
	assert.Empty(t, term.Content)
	assert.Equal(t, 2, term.Metadata["total_chunks"])

	// EOF is sticky after the terminal chunk.
	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStream_OrderPreserved(t *testing.T) {
	t.Parallel()
	fragments := []string{"one", "two", "three", "four", "five"}
	s := frame.NewStream(mock.TextStream(fragments...))

	chunks := collectChunks(t, s)

	require.Len(t, chunks, len(fragments)+1)
	for i, want := range fragments {
		assert.Equal(t, want, chunks[i].Content)
	}
	assert.Equal(t, len(fragments), chunks[len(fragments)].Metadata["total_chunks"])
}

func TestStream_InterruptedEmitsNoTerminal(t *testing.T) {
	t.Parallel()
	s := frame.NewStream(failAfter([]string{"a", "b"}, assert.AnError))

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", first.Content)

	second, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", second.Content)

	_, err = s.Next()
	assert.ErrorIs(t, err, assert.AnError)

	// The error is sticky; no terminal chunk ever appears.
	_, err = s.Next()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestStream_EmptySource(t *testing.T) {
	t.Parallel()
	s := frame.NewStream(mock.TextStream())

	chunks := collectChunks(t, s)

	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Done)
	assert.Equal(t, 0, chunks[0].Metadata["total_chunks"])
}

func TestStream_ConversationIDInTerminal(t *testing.T) {
	t.Parallel()
	s := frame.NewStream(mock.TextStream("hi"), frame.WithConversationID("conv-7"))

	chunks := collectChunks(t, s)
	require.Len(t, chunks, 2)
	assert.Equal(t, "conv-7", chunks[1].Metadata["conversation_id"])
}

func TestStream_CloseClosesSource(t *testing.T) {
	t.Parallel()
	closed := false
	src := &mock.Stream{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	s := frame.NewStream(src)
	require.NoError(t, s.Close())
	assert.True(t, closed)
}
