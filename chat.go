package relay

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits on ChatRequest fields.
const (
	MaxMessageChars        = 10000
	MaxConversationIDChars = 128
	MaxTokensLimit         = 8192
	MaxHistoryTurns        = 100
)

// ChatRequest is the body of POST /api/v1/chat/stream. Temperature and
// MaxTokens are per-request overrides; nil means the configured default.
type ChatRequest struct {
	Message             string   `json:"message"`
	ConversationID      string   `json:"conversation_id,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	MaxTokens           *int     `json:"max_tokens,omitempty"`
	ConversationHistory []Turn   `json:"conversation_history,omitempty"`
}

// Turn is one prior exchange entry supplied by the caller. History is
// caller-owned; the service never stores it.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Validate checks the request against the documented limits. The returned
// error wraps ErrValidation.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message must not be empty: %w", ErrValidation)
	}
	if n := utf8.RuneCountInString(r.Message); n > MaxMessageChars {
		return fmt.Errorf("message exceeds %d characters, got %d: %w", MaxMessageChars, n, ErrValidation)
	}
	if n := utf8.RuneCountInString(r.ConversationID); n > MaxConversationIDChars {
		return fmt.Errorf("conversation_id exceeds %d characters, got %d: %w", MaxConversationIDChars, n, ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens != nil {
		if *r.MaxTokens < 1 || *r.MaxTokens > MaxTokensLimit {
			return fmt.Errorf("max_tokens must be in [1, %d], got %d: %w", MaxTokensLimit, *r.MaxTokens, ErrValidation)
		}
	}
	if len(r.ConversationHistory) > MaxHistoryTurns {
		return fmt.Errorf("conversation_history exceeds %d turns, got %d: %w", MaxHistoryTurns, len(r.ConversationHistory), ErrValidation)
	}
	for i, turn := range r.ConversationHistory {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return fmt.Errorf("conversation_history[%d] role must be user or assistant, got %q: %w", i, turn.Role, ErrValidation)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return fmt.Errorf("conversation_history[%d] content must not be empty: %w", i, ErrValidation)
		}
	}
	return nil
}

// Messages converts the caller-supplied history plus the new message into
// provider messages, oldest first.
func (r ChatRequest) Messages() []Message {
	now := time.Now()
	msgs := make([]Message, 0, len(r.ConversationHistory)+1)
	for _, turn := range r.ConversationHistory {
		block := []ContentBlock{TextBlock{Text: turn.Content}}
		switch turn.Role {
		case RoleAssistant:
			msgs = append(msgs, AssistantMessage{Content: block, StopReason: StopEndTurn, Timestamp: now})
		default:
			msgs = append(msgs, UserMessage{Content: block, Timestamp: now})
		}
	}
	msgs = append(msgs, UserMessage{
		Content:   []ContentBlock{TextBlock{Text: r.Message}},
		Timestamp: now,
	})
	return msgs
}
