package reranker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"
)

// ErrNilContext is returned when a nil context is passed to Rerank.
var ErrNilContext = errors.New("context cannot be nil")

// OverlapReranker scores candidates by term overlap between query and
// document, blended with the incoming fusion score. It is a cheap
// cross-scoring stage: the corpus entries are short terminology and lesson
// chunks, where shared-term density tracks relevance closely.
type OverlapReranker struct{}

// NewOverlapReranker creates a new OverlapReranker.
func NewOverlapReranker() *OverlapReranker {
	return &OverlapReranker{}
}

// Rerank scores each document against the query.
//
// The combined score weighs the original fusion score and the query-term
// overlap equally, then documents are sorted descending and truncated to
// topK.
func (r *OverlapReranker) Rerank(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if topK <= 0 {
		topK = len(docs)
	}
	if len(docs) == 0 {
		return []ScoredDocument{}, nil
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return rankByScore(docs, topK), nil
	}

	type scored struct {
		doc      ScoredDocument
		combined float32
	}

	all := make([]scored, len(docs))
	for i, doc := range docs {
		overlap := termOverlap(queryTokens, tokenize(doc.Content))

		const originalWeight = 0.5
		const overlapWeight = 0.5
		combined := originalWeight*doc.Score + overlapWeight*overlap

		all[i] = scored{
			doc: ScoredDocument{
				Document:      doc,
				RerankerScore: overlap,
				OriginalRank:  i,
			},
			combined: combined,
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].combined > all[j].combined
	})

	limit := topK
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]ScoredDocument, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[i].doc
	}
	return out, nil
}

// tokenize lowercases and splits on anything that is not a letter or digit.
// The corpus is Vietnamese, so tokens are unicode-aware and no stopword
// list is applied; single-letter tokens are kept because sign names can be
// single characters ("chữ Đ").
func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termOverlap returns the fraction of distinct query terms present in the
// document, in [0, 1].
func termOverlap(queryTokens, docTokens []string) float32 {
	if len(queryTokens) == 0 {
		return 0
	}

	docSet := make(map[string]struct{}, len(docTokens))
	for _, tok := range docTokens {
		docSet[tok] = struct{}{}
	}

	matched := make(map[string]struct{})
	for _, tok := range queryTokens {
		if _, ok := docSet[tok]; ok {
			matched[tok] = struct{}{}
		}
	}

	distinct := make(map[string]struct{})
	for _, tok := range queryTokens {
		distinct[tok] = struct{}{}
	}

	return float32(len(matched)) / float32(len(distinct))
}

// rankByScore falls back to the incoming fusion order when the query has no
// scoreable tokens.
func rankByScore(docs []Document, topK int) []ScoredDocument {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	limit := topK
	if limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]ScoredDocument, limit)
	for i := 0; i < limit; i++ {
		out[i] = ScoredDocument{
			Document:      sorted[i],
			RerankerScore: sorted[i].Score,
			OriginalRank:  i,
		}
	}
	return out
}
