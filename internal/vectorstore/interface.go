// Package vectorstore provides the dense retrieval store for the knowledge
// corpus.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates an empty batch was passed to AddDocuments.
	ErrEmptyDocuments = errors.New("no documents provided")

	// ErrEmbeddingFailed indicates the embedder rejected the batch.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// Document is one corpus entry to index.
type Document struct {
	// ID uniquely identifies the document. Auto-generated when empty.
	ID string

	// Content is the text that is embedded and searched.
	Content string

	// Metadata carries auxiliary fields. Media URLs live here under the
	// "Image" and "Video" keys, in whatever encoding the ingestion source
	// used; consumers must read them tolerantly.
	Metadata map[string]string
}

// SearchResult is one similarity match.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]string
}

// Embedder generates embedding vectors for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the dense search surface the retrieval pipeline depends on.
type Store interface {
	// AddDocuments indexes a batch and returns the assigned IDs.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k documents by similarity to the query.
	// An empty store returns an empty slice, not an error.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Count returns the number of indexed documents.
	Count() int
}
