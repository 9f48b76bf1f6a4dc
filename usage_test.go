package relay_test

import (
	"testing"

	"github.com/adkchat/relay"
	"github.com/stretchr/testify/assert"
)

func TestRole_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, relay.Role("user"), relay.RoleUser)
	assert.Equal(t, relay.Role("assistant"), relay.RoleAssistant)
	assert.Equal(t, relay.Role("tool_result"), relay.RoleToolResult)
}

func TestStopReason_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, relay.StopReason("end_turn"), relay.StopEndTurn)
	assert.Equal(t, relay.StopReason("length"), relay.StopLength)
	assert.Equal(t, relay.StopReason("tool_use"), relay.StopToolUse)
	assert.Equal(t, relay.StopReason("error"), relay.StopError)
	assert.Equal(t, relay.StopReason("aborted"), relay.StopAborted)
	assert.Equal(t, relay.StopReason("unknown"), relay.StopUnknown)
}

func TestUsage_ZeroValue(t *testing.T) {
	t.Parallel()
	var u relay.Usage
	assert.Equal(t, 0, u.InputTokens)
	assert.Equal(t, 0, u.OutputTokens)
	assert.Equal(t, 0, u.CacheReadTokens)
}
