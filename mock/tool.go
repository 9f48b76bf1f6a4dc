package mock

import (
	"context"
	"encoding/json"

	"github.com/adkchat/relay"
)

// Interface compliance check.
var _ relay.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor is a test double for relay.ToolExecutor.
// Set ExecuteFn before calling Execute.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) (*relay.ToolResult, error)
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (*relay.ToolResult, error) {
	return e.ExecuteFn(ctx, name, args)
}
