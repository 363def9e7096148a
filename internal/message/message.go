package message

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the variant of a Message.
type Role string

const (
	// RoleUser is a message typed by the end user.
	RoleUser Role = "user"

	// RoleAssistant is a model turn: free text, tool call requests, or both.
	RoleAssistant Role = "assistant"

	// RoleTool is the result of one executed tool call.
	RoleTool Role = "tool"

	// RoleSystem carries instructions for a single model invocation.
	// System messages are constructed fresh per call and never persisted.
	RoleSystem Role = "system"
)

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	// ID is the provider-assigned call identifier. Results are rejoined to
	// requests by this ID, never by position.
	ID string `json:"id"`

	// Name is the tool to invoke.
	Name string `json:"name"`

	// Args is the JSON-encoded argument object.
	Args string `json:"args"`
}

// Message is one entry in a conversation history.
//
// The Role field selects which of the remaining fields are meaningful:
//
//	user:      Text
//	assistant: Text and/or ToolCalls (at least one must be set)
//	tool:      ToolName, ToolCallID, Text (the JSON payload)
//	system:    Text
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolName and ToolCallID are set on RoleTool messages only.
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a user message with a fresh stable identifier.
func NewUser(text string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewAssistant creates an assistant message. Either text or calls may be
// empty, but callers should drop messages where both are.
func NewAssistant(text string, calls []ToolCall) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Text:      text,
		ToolCalls: calls,
		CreatedAt: time.Now().UTC(),
	}
}

// NewToolResult creates a tool result message carrying the tool's
// JSON-encoded payload.
func NewToolResult(toolName, callID, payload string) Message {
	return Message{
		ID:         uuid.New().String(),
		Role:       RoleTool,
		Text:       payload,
		ToolName:   toolName,
		ToolCallID: callID,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewSystem creates a system message. It carries no identifier because it is
// never persisted.
func NewSystem(text string) Message {
	return Message{Role: RoleSystem, Text: text, CreatedAt: time.Now().UTC()}
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Empty reports whether an assistant message carries neither text nor tool
// calls. Such messages are meaningless and are dropped by Sanitize.
func (m Message) Empty() bool {
	return m.Text == "" && len(m.ToolCalls) == 0
}

// CountUserTurns returns the number of user messages in the history. The
// compaction trigger is expressed in user turns.
func CountUserTurns(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// LastUserTexts returns the text of up to limit most recent user messages,
// oldest first.
func LastUserTexts(msgs []Message, limit int) []string {
	var texts []string
	for _, m := range msgs {
		if m.Role == RoleUser {
			texts = append(texts, m.Text)
		}
	}
	if len(texts) > limit {
		texts = texts[len(texts)-limit:]
	}
	return texts
}
