package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/retrieval"
)

// KnowledgeTool searches the sign-language corpus through the retrieval
// pipeline. The result payload is JSON so the controller can recover the
// ranked entries (and their media) after the turn.
type KnowledgeTool struct {
	pipeline *retrieval.Pipeline
	logger   *zap.Logger
}

// NewKnowledgeTool creates the knowledge search tool. A nil pipeline is
// allowed; searches then report an empty result set, keeping the
// assistant conversational when no corpus is configured.
func NewKnowledgeTool(pipeline *retrieval.Pipeline, logger *zap.Logger) *KnowledgeTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeTool{pipeline: pipeline, logger: logger}
}

func (k *KnowledgeTool) Name() string { return "search_knowledge" }

func (k *KnowledgeTool) Description() string {
	return "Tra cứu kiến thức về ngôn ngữ ký hiệu Việt Nam: cách thể hiện một ký hiệu, bảng chữ cái, hoặc lộ trình học. Luôn dùng công cụ này trước khi trả lời câu hỏi về ký hiệu."
}

func (k *KnowledgeTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Câu hỏi hoặc từ khóa cần tra cứu.",
			},
		},
		"required": []string{"query"},
	}
}

type knowledgeArgs struct {
	Query string `json:"query"`
}

// knowledgePayload is the JSON shape written into the tool result. It
// carries media URLs alongside each entry so citation tags can be
// resolved later from the message history alone.
type knowledgePayload struct {
	Results []knowledgeEntry `json:"results"`
}

type knowledgeEntry struct {
	ID      int     `json:"id"`
	Content string  `json:"content"`
	Image   *string `json:"image"`
	Video   *string `json:"video"`
}

// Call runs the search and returns the ranked entries as JSON. IDs in
// the payload match the citation tags the model is instructed to emit.
func (k *KnowledgeTool) Call(ctx context.Context, args string) (string, error) {
	var parsed knowledgeArgs
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		return "", fmt.Errorf("parse search_knowledge arguments: %w", err)
	}
	if parsed.Query == "" {
		return "", fmt.Errorf("search_knowledge requires a query")
	}

	var results []retrieval.Result
	if k.pipeline != nil {
		var err error
		results, err = k.pipeline.Search(ctx, parsed.Query)
		if err != nil {
			return "", fmt.Errorf("search knowledge: %w", err)
		}
	}

	payload := knowledgePayload{Results: make([]knowledgeEntry, len(results))}
	for i, r := range results {
		payload.Results[i] = knowledgeEntry{
			ID:      r.ID,
			Content: r.Content,
			Image:   r.Media.Image,
			Video:   r.Media.Video,
		}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode search results: %w", err)
	}
	return string(out), nil
}

// DecodeKnowledgePayload recovers the search results from a tool result
// payload produced by Call. Returns false when the payload is not a
// knowledge payload.
func DecodeKnowledgePayload(payload string) ([]retrieval.Result, bool) {
	var p knowledgePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil || p.Results == nil {
		return nil, false
	}
	results := make([]retrieval.Result, len(p.Results))
	for i, e := range p.Results {
		results[i] = retrieval.Result{
			ID:      e.ID,
			Content: e.Content,
			Media:   retrieval.Media{Image: e.Image, Video: e.Video},
		}
	}
	return results, true
}
