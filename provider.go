package relay

import "context"

// Provider is a strategy pattern interface for the upstream model service.
//
// Stream opens a single-pass streaming generation. Ping is a lightweight
// liveness probe that must not trigger a generation.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Ping(ctx context.Context) error
}

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Tools        []Tool
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
