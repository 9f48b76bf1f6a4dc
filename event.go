package relay

import "encoding/json"

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta represents a text content fragment.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventToolCall represents a complete tool invocation request from the
// model. Gemini delivers function calls whole, so there is no begin/delta
// sequence to assemble.
type EventToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

func (EventToolCall) event() {}

// EventToolResult represents the outcome of a tool execution, emitted by
// the conversation loop after the executor returns.
type EventToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

func (EventToolResult) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventToolCall{}
	_ Event = EventToolResult{}
)
