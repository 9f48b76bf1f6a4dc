// Package mock provides test doubles for relay interfaces using function fields.
package mock

import (
	"context"

	"github.com/adkchat/relay"
)

// Interface compliance check.
var _ relay.Provider = (*Provider)(nil)

// Provider is a test double for relay.Provider.
// Set StreamFn before calling Stream. PingFn is nil-safe (reports healthy)
// because most tests only exercise the streaming path.
type Provider struct {
	StreamFn func(ctx context.Context, req relay.Request) (relay.Stream, error)
	PingFn   func(ctx context.Context) error

	// StreamCalls counts Stream invocations, for asserting the provider
	// was never reached on rejected requests.
	StreamCalls int
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req relay.Request) (relay.Stream, error) {
	p.StreamCalls++
	return p.StreamFn(ctx, req)
}

// Ping delegates to PingFn. Reports healthy when PingFn is not set.
func (p *Provider) Ping(ctx context.Context) error {
	if p.PingFn == nil {
		return nil
	}
	return p.PingFn(ctx)
}
