// Package reranker re-orders fused retrieval candidates by query-document
// relevance before truncation to the final result window.
package reranker

import "context"

// Document is a candidate to be re-ranked.
type Document struct {
	ID      string  // Unique identifier for the document
	Content string  // Text content to be scored
	Score   float32 // Fusion score from hybrid search
}

// ScoredDocument is a document with its re-ranking score attached.
type ScoredDocument struct {
	Document
	RerankerScore float32 // Relevance score from the re-ranker (0.0-1.0)
	OriginalRank  int     // Rank position before re-ranking (0-indexed)
}

// Reranker re-orders documents by relevance to a query.
type Reranker interface {
	// Rerank scores documents against the query and returns them sorted by
	// combined relevance, limited to topK results.
	Rerank(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, error)
}
