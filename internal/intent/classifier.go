// Package intent gates incoming messages before any tool or model cost is
// spent on them.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/llm"
)

// Verdict is the classification outcome stored on the thread state.
type Verdict string

const (
	// VerdictRelated marks an in-domain message.
	VerdictRelated Verdict = "related"

	// VerdictUnrelated marks an off-domain message.
	VerdictUnrelated Verdict = "unrelated"

	// VerdictUnset is the zero state before any classification ran.
	VerdictUnset Verdict = "unset"
)

// systemPrompt is the fixed classification rubric. In-domain traffic covers
// the sign-language curriculum, the productivity integrations, greetings,
// and continuations of an already-valid task.
const systemPrompt = `You are a semantic classifier for a Vietnamese Sign Language (VSL) assistant.
Decide whether the current message belongs to a valid task.

Set is_related = true when the message:
1. Concerns sign language: learning, looking up or practicing signs, lessons,
   the alphabet, numbers, everyday vocabulary.
2. Is a social greeting.
3. Concerns the productivity integrations: creating, viewing, editing or
   deleting calendar events, notes, or files. Any message mentioning
   "Notion", "Drive", "Calendar", "lịch", or "file" leans true.
4. Continues a previously valid task. Connective openers ("Mà...",
   "Vậy thì...", "thêm nữa", "and also...") mean you must consult the
   conversation memory before deciding.

Set is_related = false when the message asks for unrelated coding, complex
math or homework solutions, or political and sensitive social topics, and is
not a continuation of a valid task.

Answer with a single JSON object: {"reason": "...", "is_related": true|false}`

// Classifier judges message relevance with one lightweight model call.
type Classifier struct {
	completer llm.Completer
	logger    *zap.Logger
}

// New creates a classifier.
func New(completer llm.Completer, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{completer: completer, logger: logger}
}

// decision mirrors the JSON object the rubric asks for.
type decision struct {
	Reason    string `json:"reason"`
	IsRelated bool   `json:"is_related"`
}

// Classify judges the current message given up to the three most recent user
// utterances and the rolling summary. Anaphora ("that one", "also add...")
// resolves against those, not the full transcript.
//
// The policy fails open: any invocation or parse failure yields
// VerdictRelated so a user with a legitimate request is never blocked.
func (c *Classifier) Classify(ctx context.Context, current string, recentUser []string, summary string) Verdict {
	prompt := buildPrompt(current, recentUser, summary)

	raw, err := c.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		c.logger.Warn("intent classification failed, failing open", zap.Error(err))
		return VerdictRelated
	}

	dec, err := parseDecision(raw)
	if err != nil {
		c.logger.Warn("unparseable classifier verdict, failing open",
			zap.String("raw", raw),
			zap.Error(err),
		)
		return VerdictRelated
	}

	c.logger.Debug("classified intent",
		zap.Bool("is_related", dec.IsRelated),
		zap.String("reason", dec.Reason),
	)

	if dec.IsRelated {
		return VerdictRelated
	}
	return VerdictUnrelated
}

func buildPrompt(current string, recentUser []string, summary string) string {
	if summary == "" {
		summary = "(no memory yet)"
	}
	recent := "(no prior context)"
	if len(recentUser) > 0 {
		recent = strings.Join(recentUser, "\n")
	}

	return fmt.Sprintf(`--- Conversation memory ---
%s

--- Most recent user utterances ---
%s

--- Current message ---
%s

Use the memory and recent utterances to resolve connective phrases before deciding.`,
		summary, recent, current)
}

// parseDecision extracts the verdict object, tolerating surrounding prose or
// markdown fences around the JSON.
func parseDecision(raw string) (*decision, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in verdict")
	}

	var dec decision
	if err := json.Unmarshal([]byte(raw[start:end+1]), &dec); err != nil {
		return nil, fmt.Errorf("decoding verdict: %w", err)
	}
	return &dec, nil
}
