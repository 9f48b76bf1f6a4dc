package relay

import "encoding/json"

// Chunk type markers for the tool-event stream. Plain text streams leave
// Type empty, and the field is omitted from the wire form.
const (
	ChunkTextDelta  = "text_delta"
	ChunkToolCall   = "tool_call"
	ChunkToolResult = "tool_result"
	ChunkError      = "error"
	ChunkEnd        = "end"
)

// StreamChunk is one NDJSON line of a chat stream response. Chunks are
// emitted exactly once, in generation order; ids are opaque and unique,
// ordering is carried by line order.
//
// Metadata is populated only on the terminal chunk (total_chunks, and
// conversation_id when the request supplied one). The key is always
// serialized so non-terminal chunks carry an explicit null.
type StreamChunk struct {
	Type     string          `json:"type,omitempty"`
	ChunkID  string          `json:"chunk_id"`
	Content  string          `json:"content"`
	Done     bool            `json:"done"`
	Tool     string          `json:"tool,omitempty"`
	CallID   string          `json:"call_id,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata map[string]any  `json:"metadata"`
}

// Terminal reports whether the chunk ends its stream, cleanly or not.
func (c StreamChunk) Terminal() bool {
	return c.Done
}

// Failed reports whether the chunk is an error marker.
func (c StreamChunk) Failed() bool {
	return c.Error != "" || c.Type == ChunkError
}
