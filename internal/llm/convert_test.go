package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/vsignlabs/vsignd/internal/message"
)

func TestToContentToolResult(t *testing.T) {
	m := message.NewToolResult("search_knowledge", "call_9", `[{"id":1}]`)

	mc := toContent(m)

	assert.Equal(t, llms.ChatMessageTypeTool, mc.Role)
	require.Len(t, mc.Parts, 1)
	resp, ok := mc.Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_9", resp.ToolCallID)
	assert.Equal(t, "search_knowledge", resp.Name)
	assert.Equal(t, `[{"id":1}]`, resp.Content)
}

func TestToContentAssistantWithCalls(t *testing.T) {
	m := message.NewAssistant("checking", []message.ToolCall{
		{ID: "call_1", Name: "get_current_time", Args: "{}"},
	})

	mc := toContent(m)

	assert.Equal(t, llms.ChatMessageTypeAI, mc.Role)
	require.Len(t, mc.Parts, 2)
	assert.Equal(t, llms.TextContent{Text: "checking"}, mc.Parts[0])

	call, ok := mc.Parts[1].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "call_1", call.ID)
	require.NotNil(t, call.FunctionCall)
	assert.Equal(t, "get_current_time", call.FunctionCall.Name)
}

func TestFromToolCalls(t *testing.T) {
	calls := []llms.ToolCall{
		{ID: "a", FunctionCall: &llms.FunctionCall{Name: "x", Arguments: `{"q":1}`}},
		{ID: "b", FunctionCall: nil}, // malformed, skipped
		{ID: "c", FunctionCall: &llms.FunctionCall{Name: "y"}},
	}

	out := fromToolCalls(calls)

	require.Len(t, out, 2)
	assert.Equal(t, message.ToolCall{ID: "a", Name: "x", Args: `{"q":1}`}, out[0])
	// missing arguments normalize to an empty object
	assert.Equal(t, "{}", out[1].Args)

	assert.Nil(t, fromToolCalls(nil))
}

func TestToTools(t *testing.T) {
	defs := []ToolDef{{
		Name:        "start_practice",
		Description: "open the camera",
		Parameters:  map[string]any{"type": "object"},
	}}

	tools := toTools(defs)

	require.Len(t, tools, 1)
	assert.Equal(t, "function", tools[0].Type)
	assert.Equal(t, "start_practice", tools[0].Function.Name)
}
