package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/reranker"
	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

// Reciprocal rank fusion constant. 60 keeps lower-ranked candidates from
// being drowned out entirely.
const rrfC = 60

const (
	denseWeight   = 0.5
	lexicalWeight = 0.5
)

// Pipeline is the hybrid retrieval pipeline: query rewrite, dense plus
// lexical candidate search, reciprocal rank fusion, rerank, media
// extraction.
type Pipeline struct {
	cfg      Config
	store    vectorstore.Store
	lexical  *LexicalIndex
	rewriter *Rewriter
	reranker reranker.Reranker
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewPipeline creates a retrieval pipeline. The vector store may be nil
// when no embedding backend is configured; searches then run over the
// lexical index alone, and if that is empty too Search returns no
// results rather than an error.
func NewPipeline(cfg Config, store vectorstore.Store, lexical *LexicalIndex, rewriter *Rewriter, rr reranker.Reranker, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lexical == nil {
		return nil, fmt.Errorf("%w: lexical index is required", ErrInvalidConfig)
	}
	if rr == nil {
		rr = reranker.NewOverlapReranker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		lexical:  lexical,
		rewriter: rewriter,
		reranker: rr,
		logger:   logger,
		tracer:   otel.Tracer("vsignd.retrieval.pipeline"),
	}, nil
}

// Search runs the full pipeline for a user question and returns the
// final ranked results with 1-based IDs and extracted media.
func (p *Pipeline) Search(ctx context.Context, query string) ([]Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.search")
	defer span.End()

	keywords := query
	if p.rewriter != nil {
		keywords = p.rewriter.Rewrite(ctx, query)
	}
	span.SetAttributes(attribute.String("retrieval.keywords", keywords))

	var dense []vectorstore.SearchResult
	if p.store != nil {
		var err error
		dense, err = p.store.Search(ctx, keywords, p.cfg.DenseK)
		if err != nil {
			// Lexical results are still usable; log and continue.
			p.logger.Warn("dense search failed", zap.Error(err))
			dense = nil
		}
	}
	sparse := p.lexical.Search(ctx, keywords, p.cfg.LexicalK)

	span.SetAttributes(
		attribute.Int("retrieval.dense_candidates", len(dense)),
		attribute.Int("retrieval.lexical_candidates", len(sparse)),
	)

	fused := fuse(dense, sparse)
	if len(fused) == 0 {
		return []Result{}, nil
	}

	ranked, err := p.reranker.Rerank(ctx, keywords, fused, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	return attachMedia(ranked, dense, sparse), nil
}

// fuse merges dense and lexical candidates with weighted reciprocal rank
// fusion, deduplicating by document ID.
func fuse(dense, sparse []vectorstore.SearchResult) []reranker.Document {
	type entry struct {
		res   vectorstore.SearchResult
		score float32
	}
	merged := make(map[string]*entry)

	accumulate := func(results []vectorstore.SearchResult, weight float32) {
		for rank, r := range results {
			contribution := weight / float32(rrfC+rank+1)
			if e, ok := merged[r.ID]; ok {
				e.score += contribution
			} else {
				merged[r.ID] = &entry{res: r, score: contribution}
			}
		}
	}
	accumulate(dense, denseWeight)
	accumulate(sparse, lexicalWeight)

	docs := make([]reranker.Document, 0, len(merged))
	for _, e := range merged {
		docs = append(docs, reranker.Document{
			ID:      e.res.ID,
			Content: e.res.Content,
			Score:   e.score,
		})
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	return docs
}

// attachMedia maps reranked documents back to their source metadata and
// builds the final 1-based result list.
func attachMedia(ranked []reranker.ScoredDocument, dense, sparse []vectorstore.SearchResult) []Result {
	meta := make(map[string]map[string]string, len(dense)+len(sparse))
	for _, r := range dense {
		meta[r.ID] = r.Metadata
	}
	for _, r := range sparse {
		if _, ok := meta[r.ID]; !ok {
			meta[r.ID] = r.Metadata
		}
	}

	results := make([]Result, len(ranked))
	for i, doc := range ranked {
		results[i] = Result{
			ID:      i + 1,
			Content: doc.Content,
			Media:   mediaFromMetadata(meta[doc.ID]),
		}
	}
	return results
}
