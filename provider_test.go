package relay_test

import (
	"testing"

	"github.com/adkchat/relay"
	"github.com/stretchr/testify/assert"
)

func TestStreamState_ZeroValue(t *testing.T) {
	t.Parallel()
	var s relay.StreamState
	assert.Equal(t, relay.StreamStateNew, s, "zero-value StreamState should be StreamStateNew")
}

func TestRequest_ZeroValue(t *testing.T) {
	t.Parallel()
	var r relay.Request
	assert.Empty(t, r.Model)
	assert.Empty(t, r.SystemPrompt)
	assert.Nil(t, r.Messages)
	assert.Nil(t, r.Tools)
	assert.Equal(t, 0, r.MaxTokens)
	assert.Nil(t, r.Temperature)
}

func TestRequest_ValuePassingPreventsAppendMutation(t *testing.T) {
	t.Parallel()
	original := relay.Request{
		Messages: []relay.Message{
			relay.UserMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "hello"}}},
		},
		Tools: []relay.Tool{
			{Name: "create_cube", Description: "Create a cube in the scene"},
		},
	}

	// Simulate what a provider receiving Request by value would do.
	mutate := func(req relay.Request) {
		req.Messages = append(req.Messages, relay.AssistantMessage{
			Content: []relay.ContentBlock{relay.TextBlock{Text: "hi"}},
		})
		req.Tools = append(req.Tools, relay.Tool{Name: "delete_prim"})
	}
	mutate(original)

	assert.Len(t, original.Messages, 1, "caller's Messages slice must not grow after provider appends")
	assert.Len(t, original.Tools, 1, "caller's Tools slice must not grow after provider appends")
}
