package relay

// Usage tracks token consumption.
//
// Invariant:
//
//	InputTokens     = non-cached input tokens
//	CacheReadTokens = tokens served from cache (cache hit)
//
// Total input tokens = InputTokens + CacheReadTokens. Providers normalize
// their API-specific fields to this invariant (Gemini subtracts
// CachedContentTokenCount from PromptTokenCount to produce InputTokens)
// and clamp to zero when subtracting to guard against inconsistent
// upstream data.
type Usage struct {
	InputTokens     int
	OutputTokens    int
	CacheReadTokens int
}
