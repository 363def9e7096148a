package llm

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/vsignlabs/vsignd/internal/message"
)

// toContent maps one engine message onto the langchaingo wire shape.
func toContent(m message.Message) llms.MessageContent {
	switch m.Role {
	case message.RoleTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: m.ToolCallID,
				Name:       m.ToolName,
				Content:    m.Text,
			}},
		}

	case message.RoleAssistant:
		mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if m.Text != "" {
			mc.Parts = append(mc.Parts, llms.TextContent{Text: m.Text})
		}
		for _, call := range m.ToolCalls {
			mc.Parts = append(mc.Parts, llms.ToolCall{
				ID:   call.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      call.Name,
					Arguments: call.Args,
				},
			})
		}
		return mc

	case message.RoleSystem:
		return llms.TextParts(llms.ChatMessageTypeSystem, m.Text)

	default:
		return llms.TextParts(llms.ChatMessageTypeHuman, m.Text)
	}
}

// toTools maps tool definitions onto the langchaingo function schema.
func toTools(defs []ToolDef) []llms.Tool {
	tools := make([]llms.Tool, len(defs))
	for i, def := range defs {
		tools[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return tools
}

// fromToolCalls maps provider tool calls back onto engine tool calls,
// preserving request order and call identifiers.
func fromToolCalls(calls []llms.ToolCall) []message.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]message.ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		args := call.FunctionCall.Arguments
		if args == "" {
			args = "{}"
		}
		out = append(out, message.ToolCall{
			ID:   call.ID,
			Name: call.FunctionCall.Name,
			Args: args,
		})
	}
	return out
}
