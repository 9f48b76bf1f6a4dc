package gemini_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adkchat/relay"
	"github.com/adkchat/relay/gemini"
)

func TestConvertMessages_UserMessage(t *testing.T) {
	t.Parallel()
	msgs := []relay.Message{
		relay.UserMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "Hello"}}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	assert.Equal(t, "user", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hello", got[0].Parts[0].Text)
}

func TestConvertMessages_AssistantMessage(t *testing.T) {
	t.Parallel()
	msgs := []relay.Message{
		relay.AssistantMessage{Content: []relay.ContentBlock{
			relay.TextBlock{Text: "Let me help."},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Let me help.", got[0].Parts[0].Text)
}

func TestConvertMessages_ToolCallAndResult(t *testing.T) {
	t.Parallel()
	msgs := []relay.Message{
		relay.AssistantMessage{Content: []relay.ContentBlock{
			relay.ToolCallBlock{ID: "call_123", Name: "read", Arguments: json.RawMessage(`{"path":"foo.go"}`)},
		}},
		relay.ToolResultMessage{
			ToolCallID: "call_123",
			ToolName:   "read",
			Content:    []relay.ContentBlock{relay.TextBlock{Text: "file contents"}},
		},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 2)

	// Assistant with tool call, ID passed through.
	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	require.NotNil(t, got[0].Parts[0].FunctionCall)
	assert.Equal(t, "call_123", got[0].Parts[0].FunctionCall.ID)
	assert.Equal(t, "read", got[0].Parts[0].FunctionCall.Name)
	assert.Equal(t, "foo.go", got[0].Parts[0].FunctionCall.Args["path"])

	// Tool result correlates by ID, output in "output" key.
	assert.Equal(t, "user", got[1].Role)
	require.Len(t, got[1].Parts, 1)
	require.NotNil(t, got[1].Parts[0].FunctionResponse)
	assert.Equal(t, "call_123", got[1].Parts[0].FunctionResponse.ID)
	assert.Equal(t, "read", got[1].Parts[0].FunctionResponse.Name)
	assert.Equal(t, "file contents", got[1].Parts[0].FunctionResponse.Response["output"])
}

func TestConvertMessages_ToolResultError(t *testing.T) {
	t.Parallel()
	msgs := []relay.Message{
		relay.AssistantMessage{Content: []relay.ContentBlock{
			relay.ToolCallBlock{ID: "call_err", Name: "bash", Arguments: json.RawMessage(`{"cmd":"ls"}`)},
		}},
		relay.ToolResultMessage{
			ToolCallID: "call_err",
			ToolName:   "bash",
			Content:    []relay.ContentBlock{relay.TextBlock{Text: "permission denied"}},
			IsError:    true,
		},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 2)

	// Error result uses the "error" key.
	resp := got[1].Parts[0].FunctionResponse
	assert.Equal(t, "call_err", resp.ID)
	assert.Equal(t, "permission denied", resp.Response["error"])
	assert.Nil(t, resp.Response["output"])
}

func TestConvertMessages_Conversation(t *testing.T) {
	t.Parallel()
	msgs := []relay.Message{
		relay.UserMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "Hi"}}},
		relay.AssistantMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "Hello! How can I help?"}}},
		relay.UserMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "What is Go?"}}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 3)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, "user", got[2].Role)
	assert.Equal(t, "What is Go?", got[2].Parts[0].Text)
}

func TestConvertTools(t *testing.T) {
	t.Parallel()
	tools := []relay.Tool{
		{Name: "read", Description: "Read a file", Parameters: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`)},
		{Name: "bash", Description: "Run a command", Parameters: json.RawMessage(`{"type":"object","properties":{"cmd":{"type":"string"}}}`)},
	}
	got := gemini.ConvertTools(tools)
	require.Len(t, got, 1) // single genai.Tool with multiple declarations
	require.Len(t, got[0].FunctionDeclarations, 2)
	assert.Equal(t, "read", got[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "Read a file", got[0].FunctionDeclarations[0].Description)
	assert.Equal(t, "bash", got[0].FunctionDeclarations[1].Name)
}

func TestConvertTools_Empty(t *testing.T) {
	t.Parallel()
	got := gemini.ConvertTools(nil)
	assert.Nil(t, got)
}
