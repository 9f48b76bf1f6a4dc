package relay_test

import (
	"encoding/json"
	"testing"

	"github.com/adkchat/relay"
	"github.com/stretchr/testify/assert"
)

func TestEventTextDelta_ImplementsEvent(t *testing.T) {
	t.Parallel()
	var e relay.Event = relay.EventTextDelta{Delta: "hello"}
	assert.NotNil(t, e)
}

func TestEventToolCall_ImplementsEvent(t *testing.T) {
	t.Parallel()
	var e relay.Event = relay.EventToolCall{
		ID:   "call-1",
		Name: "create_cube",
		Args: json.RawMessage(`{"size": 100}`),
	}
	assert.NotNil(t, e)
}

func TestEventToolResult_ImplementsEvent(t *testing.T) {
	t.Parallel()
	var e relay.Event = relay.EventToolResult{
		ID:      "call-1",
		Name:    "create_cube",
		Content: `{"success": true}`,
	}
	assert.NotNil(t, e)
}

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []relay.Event{
		relay.EventTextDelta{Delta: "hello"},
		relay.EventToolCall{ID: "call-1", Name: "create_cube"},
		relay.EventToolResult{ID: "call-1", Name: "create_cube", Content: "done"},
	}
	assert.Len(t, events, 3, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case relay.EventTextDelta:
		case relay.EventToolCall:
		case relay.EventToolResult:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
