package agent

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/llm"
)

const safetySystemPrompt = `Bạn là bộ kiểm duyệt an toàn cho trợ lý học ngôn ngữ ký hiệu.
Đánh giá câu trả lời dưới đây của trợ lý.
Trả lời đúng một từ: "SAFE" nếu câu trả lời phù hợp, "UNSAFE" nếu câu trả lời
chứa nội dung độc hại, sai lệch nguy hiểm hoặc không phù hợp với người học.`

// safetyTimeout bounds the background judgment; the user's response has
// already been sent when it runs.
const safetyTimeout = 15 * time.Second

// SafetyJudge reviews outgoing answers in the background. Verdicts are
// recorded for monitoring only and never block or alter a response.
type SafetyJudge struct {
	completer llm.Completer
	logger    *zap.Logger
	verdicts  metric.Int64Counter
}

// NewSafetyJudge creates a judge. A nil completer disables judging.
func NewSafetyJudge(completer llm.Completer, logger *zap.Logger) *SafetyJudge {
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := otel.Meter("vsignd.agent.safety")
	verdicts, _ := meter.Int64Counter("vsignd_safety_verdicts_total",
		metric.WithDescription("Background safety judgments by verdict"))

	return &SafetyJudge{
		completer: completer,
		logger:    logger,
		verdicts:  verdicts,
	}
}

// Review judges an answer asynchronously. Fire and forget: errors are
// logged, never surfaced.
func (j *SafetyJudge) Review(threadID, answer string) {
	if j == nil || j.completer == nil || strings.TrimSpace(answer) == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), safetyTimeout)
		defer cancel()

		out, err := j.completer.Complete(ctx, safetySystemPrompt, answer)
		if err != nil {
			j.logger.Warn("safety judgment failed",
				zap.String("thread_id", threadID),
				zap.Error(err))
			return
		}

		verdict := "safe"
		if strings.Contains(strings.ToUpper(out), "UNSAFE") {
			verdict = "unsafe"
			j.logger.Warn("answer judged unsafe",
				zap.String("thread_id", threadID),
				zap.String("answer", answer))
		}
		if j.verdicts != nil {
			j.verdicts.Add(ctx, 1, metric.WithAttributes(
				attribute.String("verdict", verdict)))
		}
	}()
}
