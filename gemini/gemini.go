// Package gemini implements [relay.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between relay's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [relay.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-2.0-flash-exp"
	defaultMaxTokens = 2048
)
