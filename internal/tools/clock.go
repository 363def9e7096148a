package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ClockTool reports the current date and time. Registered so the model
// can anchor scheduling requests ("nhắc mình lúc 3 giờ chiều mai")
// without guessing.
type ClockTool struct {
	now func() time.Time
}

// NewClockTool creates the clock tool. now may be nil for wall-clock time.
func NewClockTool(now func() time.Time) *ClockTool {
	if now == nil {
		now = time.Now
	}
	return &ClockTool{now: now}
}

func (c *ClockTool) Name() string { return "get_current_time" }

func (c *ClockTool) Description() string {
	return "Lấy ngày giờ hiện tại. Dùng khi cần biết hôm nay là ngày nào hoặc bây giờ là mấy giờ, ví dụ khi đặt lịch hoặc tạo nhắc nhở."
}

func (c *ClockTool) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// clockPayload is the structured result of get_current_time.
type clockPayload struct {
	ISOFormat      string `json:"iso_format"`
	TimezoneOffset string `json:"timezone_offset"`
	HumanReadable  string `json:"human_readable"`
	Note           string `json:"note"`
}

// Call returns the current time as JSON: ISO-8601 timestamp, the local
// UTC offset, a readable form, and a note telling the model to suffix
// any timestamps it produces with that same offset.
func (c *ClockTool) Call(_ context.Context, _ string) (string, error) {
	now := c.now()
	offset := now.Format("-07:00")

	raw, err := json.Marshal(clockPayload{
		ISOFormat:      now.Format("2006-01-02T15:04:05-07:00"),
		TimezoneOffset: offset,
		HumanReadable:  now.Format("Monday, 02 January 2006, 15:04"),
		Note:           fmt.Sprintf("Khi tạo dấu thời gian, luôn giữ hậu tố múi giờ %s.", offset),
	})
	if err != nil {
		return "", fmt.Errorf("encoding clock payload: %w", err)
	}
	return string(raw), nil
}
