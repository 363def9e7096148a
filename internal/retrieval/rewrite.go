package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/llm"
)

const rewriteSystemPrompt = `Bạn là bộ rút gọn truy vấn cho hệ thống tra cứu ngôn ngữ ký hiệu Việt Nam.
Nhiệm vụ: chuyển câu hỏi của người dùng thành từ khóa tra cứu ngắn gọn (1-4 từ).

Quy tắc:
- Nếu người dùng hỏi về một ký hiệu hoặc từ vựng cụ thể, trả về đúng từ đó.
- Nếu người dùng hỏi về lộ trình hoặc cách bắt đầu học, trả về "lộ trình học".
- Chỉ trả về từ khóa, không giải thích, không dấu câu thừa.

Ví dụ:
Câu hỏi: Ký hiệu "xin chào" làm như thế nào vậy?
Từ khóa: xin chào

Câu hỏi: Cho mình xem cách thể hiện chữ Đ
Từ khóa: chữ Đ

Câu hỏi: Mình là người mới, nên học gì trước?
Từ khóa: lộ trình học

Câu hỏi: Làm sao để ký hiệu "cảm ơn"?
Từ khóa: cảm ơn`

// Rewriter condenses a conversational question into corpus lookup
// keywords using the light model.
type Rewriter struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewRewriter creates a query rewriter. A nil completer disables
// rewriting; queries pass through unchanged.
func NewRewriter(completer llm.Completer, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{completer: completer, logger: logger}
}

// Rewrite returns search keywords for the query. Fails soft: on any
// model error or empty output the original query is returned, since a
// degraded lookup beats no lookup.
func (r *Rewriter) Rewrite(ctx context.Context, query string) string {
	if r.completer == nil {
		return query
	}

	out, err := r.completer.Complete(ctx, rewriteSystemPrompt, "Câu hỏi: "+query+"\nTừ khóa:")
	if err != nil {
		r.logger.Warn("query rewrite failed, using original query", zap.Error(err))
		return query
	}

	rewritten := strings.TrimSpace(out)
	rewritten = strings.Trim(rewritten, `"'`)
	if rewritten == "" {
		return query
	}
	// A rewrite longer than the question is the model rambling.
	if len(rewritten) > len(query)*2+16 {
		r.logger.Warn("query rewrite too long, using original query",
			zap.String("rewritten", rewritten))
		return query
	}

	r.logger.Debug("query rewritten",
		zap.String("original", query),
		zap.String("rewritten", rewritten))
	return rewritten
}
