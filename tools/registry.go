// Package tools provides a runtime registry of callable tools keyed by name.
// Tools come and go while the server runs: the Kit bridge registers scene
// tool proxies when the extension connects and removes them on disconnect,
// so the registry is safe for concurrent use.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/adkchat/relay"
)

// Func is a tool implementation. Infrastructure failures are returned as
// errors; tool-level failures go in the result with IsError set.
type Func func(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error)

// Compile-time interface check.
var _ relay.ToolExecutor = (*Registry)(nil)

// Registry maps tool names to their schema and implementation.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

type entry struct {
	schema relay.Tool
	fn     Func
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(schema relay.Tool, fn Func) error {
	if schema.Name == "" {
		return fmt.Errorf("tools: tool name is required")
	}
	if fn == nil {
		return fmt.Errorf("tools: tool %q has no implementation", schema.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[schema.Name]; exists {
		return fmt.Errorf("tools: tool %q already registered", schema.Name)
	}
	r.entries[schema.Name] = entry{schema: schema, fn: fn}
	r.order = append(r.order, schema.Name)
	return nil
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("tools: unregister %q: %w", name, relay.ErrToolNotFound)
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Schemas returns all tool schemas in registration order.
func (r *Registry) Schemas() []relay.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]relay.Tool, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.entries[name].schema)
	}
	return schemas
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Execute dispatches a tool call by name. Unknown tool names return an
// IsError result so the model can self-correct.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*relay.ToolResult, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return relay.TextResult(fmt.Sprintf("unknown tool: %s", name), true), nil
	}
	return e.fn(ctx, args)
}
