package relay

import (
	"context"
	"encoding/json"
)

// Tool is the schema sent to the model describing a tool's capabilities.
// Parameters is a JSON Schema object.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolExecutor runs tools. Execute returns error for infrastructure failures.
// ToolResult.IsError indicates tool-reported domain failures sent back to
// the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	Content []ContentBlock
	IsError bool
}

// TextResult builds a ToolResult holding a single text block.
func TextResult(text string, isError bool) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{TextBlock{Text: text}},
		IsError: isError,
	}
}
