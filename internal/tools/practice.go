package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// PracticeActionName is the action token the client app watches for to
// switch into camera practice mode.
const PracticeActionName = "START_PRACTICE"

// PracticeAction is the structured signal returned to the client when a
// practice session should start. Sign is nil for free practice.
type PracticeAction struct {
	Action string  `json:"action"`
	Sign   *string `json:"sign"`
}

// PracticeTool signals the client to open practice mode. It has no side
// effects on the server; the payload is picked out of the turn's tool
// results and forwarded in the response.
type PracticeTool struct{}

// NewPracticeTool creates the practice tool.
func NewPracticeTool() *PracticeTool { return &PracticeTool{} }

func (p *PracticeTool) Name() string { return "start_practice" }

func (p *PracticeTool) Description() string {
	return "Bắt đầu chế độ luyện tập ký hiệu với camera. Dùng khi người dùng muốn luyện tập hoặc được kiểm tra một ký hiệu."
}

func (p *PracticeTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sign": map[string]any{
				"type":        "string",
				"description": "Tên ký hiệu cần luyện tập. Bỏ trống để luyện tập tự do.",
			},
		},
	}
}

type practiceArgs struct {
	Sign string `json:"sign"`
}

// Call returns the practice action payload as JSON.
func (p *PracticeTool) Call(_ context.Context, args string) (string, error) {
	var parsed practiceArgs
	if args != "" {
		if err := json.Unmarshal([]byte(args), &parsed); err != nil {
			return "", fmt.Errorf("parse start_practice arguments: %w", err)
		}
	}

	action := PracticeAction{Action: PracticeActionName}
	if parsed.Sign != "" {
		action.Sign = &parsed.Sign
	}

	out, err := json.Marshal(action)
	if err != nil {
		return "", fmt.Errorf("encode practice action: %w", err)
	}
	return string(out), nil
}

// DecodePracticeAction recovers a practice action from a tool result
// payload. Returns false when the payload is not a practice action.
func DecodePracticeAction(payload string) (*PracticeAction, bool) {
	var action PracticeAction
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		return nil, false
	}
	if action.Action != PracticeActionName {
		return nil, false
	}
	return &action, true
}
