// Package compactor folds old conversation history into a running
// summary so long threads stay inside the model's context window without
// losing the facts the user would expect the assistant to remember.
package compactor

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/llm"
	"github.com/vsignlabs/vsignd/internal/message"
)

// KeepLastTurns is how many trailing user turns survive compaction
// verbatim. Everything older is folded into the summary.
const KeepLastTurns = 3

const summarySystemPrompt = `Bạn là bộ tóm tắt hội thoại cho trợ lý học ngôn ngữ ký hiệu Việt Nam.
Tóm tắt đoạn hội thoại dưới đây thành các gạch đầu dòng ngắn.

Giữ lại:
- Lịch hẹn, nhắc nhở và thời gian cụ thể.
- Tên riêng, tên ký hiệu và từ vựng người dùng đã tra cứu.
- Tiến độ học và yêu cầu còn dang dở.

Bỏ qua lời chào hỏi và câu đệm. Nếu đã có tóm tắt trước đó, gộp thông
tin mới vào thay vì lặp lại. Cuối cùng ghi thêm một dòng về câu hỏi gần
nhất của người dùng.`

// Result describes one compaction: the new summary and the IDs of the
// messages it replaces.
type Result struct {
	Summary   string
	DeleteIDs []string
}

// Compactor folds history using a model summarizer.
type Compactor struct {
	completer llm.Completer
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New creates a compactor.
func New(completer llm.Completer, logger *zap.Logger) *Compactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compactor{
		completer: completer,
		logger:    logger,
		tracer:    otel.Tracer("vsignd.compactor"),
	}
}

// Compact summarizes everything before the last KeepLastTurns user turns
// and returns the merged summary plus the IDs to drop. When the history
// is too short to fold, the zero Result is returned and nothing changes,
// so calling it again on already-compacted history is a no-op. On model
// failure an error is returned and the caller keeps the history as is.
func (c *Compactor) Compact(ctx context.Context, msgs []message.Message, previousSummary string) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "compactor.compact",
		trace.WithAttributes(attribute.Int("compactor.messages", len(msgs))))
	defer span.End()

	pivot := foldPivot(msgs)
	if pivot <= 0 {
		return Result{}, nil
	}
	old := msgs[:pivot]

	prompt := buildPrompt(old, previousSummary)
	summary, err := c.completer.Complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("summarize history: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return Result{}, fmt.Errorf("summarizer returned empty output")
	}

	ids := make([]string, 0, len(old))
	for _, m := range old {
		ids = append(ids, m.ID)
	}

	span.SetAttributes(attribute.Int("compactor.folded", len(ids)))
	c.logger.Info("history compacted",
		zap.Int("folded_messages", len(ids)),
		zap.Int("kept_messages", len(msgs)-len(ids)))

	return Result{Summary: summary, DeleteIDs: ids}, nil
}

// foldPivot returns the index of the first message that must survive:
// the user message starting the KeepLastTurns-th turn from the end.
// Returns 0 when there is nothing old enough to fold.
func foldPivot(msgs []message.Message) int {
	seen := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == message.RoleUser {
			seen++
			if seen == KeepLastTurns {
				return i
			}
		}
	}
	return 0
}

// buildPrompt renders the folded slice as a transcript. Tool activity is
// reduced to the tool names; payloads are noise at summary granularity.
func buildPrompt(old []message.Message, previousSummary string) string {
	var b strings.Builder
	if previousSummary != "" {
		b.WriteString("Tóm tắt trước đó:\n")
		b.WriteString(previousSummary)
		b.WriteString("\n\n")
	}
	b.WriteString("Hội thoại:\n")

	for _, m := range old {
		switch m.Role {
		case message.RoleUser:
			fmt.Fprintf(&b, "Người dùng: %s\n", m.Text)
		case message.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				names := make([]string, len(m.ToolCalls))
				for i, c := range m.ToolCalls {
					names[i] = c.Name
				}
				fmt.Fprintf(&b, "Trợ lý: [dùng công cụ: %s]\n", strings.Join(names, ", "))
			}
			if m.Text != "" {
				fmt.Fprintf(&b, "Trợ lý: %s\n", m.Text)
			}
		case message.RoleTool:
			// Skipped: the assistant turn already names the tool.
		}
	}
	return b.String()
}
