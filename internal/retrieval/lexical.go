package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

// BM25 parameters. Standard values; the corpus entries are short and
// fairly uniform in length so tuning buys little.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

type lexicalDoc struct {
	id       string
	content  string
	metadata map[string]string
	terms    map[string]int
	length   int
}

// LexicalIndex is an in-memory BM25 index over the corpus. It exists
// because dense search alone misses exact terminology lookups ("chữ Đ",
// sign names) that users type verbatim. Safe for concurrent use.
type LexicalIndex struct {
	mu     sync.RWMutex
	docs   []lexicalDoc
	df     map[string]int
	avgLen float64
	logger *zap.Logger
}

// NewLexicalIndex creates an empty index.
func NewLexicalIndex(logger *zap.Logger) *LexicalIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LexicalIndex{
		df:     make(map[string]int),
		logger: logger,
	}
}

// Add indexes a batch of documents. Documents with empty content are
// skipped.
func (idx *LexicalIndex) Add(docs []vectorstore.Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		tokens := lexTokenize(d.Content)
		terms := make(map[string]int, len(tokens))
		for _, t := range tokens {
			terms[t]++
		}
		for t := range terms {
			idx.df[t]++
		}
		idx.docs = append(idx.docs, lexicalDoc{
			id:       d.ID,
			content:  d.Content,
			metadata: d.Metadata,
			terms:    terms,
			length:   len(tokens),
		})
	}

	var total int
	for _, d := range idx.docs {
		total += d.length
	}
	if len(idx.docs) > 0 {
		idx.avgLen = float64(total) / float64(len(idx.docs))
	}

	idx.logger.Debug("lexical index updated", zap.Int("docs", len(idx.docs)))
}

// Count returns the number of indexed documents.
func (idx *LexicalIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search returns the top-k documents by BM25 score. An empty index or a
// tokenless query yields an empty slice.
func (idx *LexicalIndex) Search(_ context.Context, query string, k int) []vectorstore.SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tokens := lexTokenize(query)
	if len(idx.docs) == 0 || len(tokens) == 0 || k <= 0 {
		return []vectorstore.SearchResult{}
	}

	n := float64(len(idx.docs))
	type hit struct {
		doc   *lexicalDoc
		score float64
	}
	hits := make([]hit, 0, len(idx.docs))

	for i := range idx.docs {
		doc := &idx.docs[i]
		var score float64
		for _, t := range tokens {
			tf := doc.terms[t]
			if tf == 0 {
				continue
			}
			df := float64(idx.df[t])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - bm25B + bm25B*float64(doc.length)/idx.avgLen
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
		if score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if k > len(hits) {
		k = len(hits)
	}

	out := make([]vectorstore.SearchResult, k)
	for i := 0; i < k; i++ {
		out[i] = vectorstore.SearchResult{
			ID:       hits[i].doc.id,
			Content:  hits[i].doc.content,
			Score:    float32(hits[i].score),
			Metadata: hits[i].doc.metadata,
		}
	}
	return out
}

func lexTokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
