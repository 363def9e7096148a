package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

type fakeStore struct {
	results []vectorstore.SearchResult
	err     error
	added   int
}

func (f *fakeStore) AddDocuments(_ context.Context, docs []vectorstore.Document) ([]string, error) {
	f.added += len(docs)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (f *fakeStore) Search(_ context.Context, _ string, _ int) ([]vectorstore.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeStore) Count() int { return len(f.results) }

func testConfig() Config {
	return Config{DenseK: 5, LexicalK: 5, TopK: 5}
}

func TestPipeline_Search(t *testing.T) {
	lexical := NewLexicalIndex(nil)
	lexical.Add([]vectorstore.Document{
		{
			ID:      "greet",
			Content: "Ký hiệu xin chào: đưa tay lên ngang trán.",
			Metadata: map[string]string{
				"Video": "https://cdn.example.com/xin-chao.mp4",
			},
		},
		{ID: "thanks", Content: "Ký hiệu cảm ơn: đặt tay lên cằm."},
	})

	store := &fakeStore{results: []vectorstore.SearchResult{
		{
			ID:      "greet",
			Content: "Ký hiệu xin chào: đưa tay lên ngang trán.",
			Score:   0.9,
			Metadata: map[string]string{
				"Video": "https://cdn.example.com/xin-chao.mp4",
			},
		},
		{ID: "alphabet", Content: "Bảng chữ cái ngôn ngữ ký hiệu.", Score: 0.4},
	}}

	p, err := NewPipeline(testConfig(), store, lexical, nil, nil, nil)
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "ký hiệu xin chào")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// IDs are assigned by final rank, starting at 1.
	for i, r := range results {
		assert.Equal(t, i+1, r.ID)
	}

	// Candidate appearing in both searches wins the fusion.
	assert.Contains(t, results[0].Content, "xin chào")
	require.NotNil(t, results[0].Media.Video)
	assert.Equal(t, "https://cdn.example.com/xin-chao.mp4", *results[0].Media.Video)

	// Duplicates across dense and lexical collapse to one result.
	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r.Content], "duplicate content in results")
		seen[r.Content] = true
	}
}

func TestPipeline_Search_NilStore(t *testing.T) {
	lexical := NewLexicalIndex(nil)
	lexical.Add([]vectorstore.Document{
		{ID: "greet", Content: "Ký hiệu xin chào."},
	})

	p, err := NewPipeline(testConfig(), nil, lexical, nil, nil, nil)
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "xin chào")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ID)
}

func TestPipeline_Search_NoCandidates(t *testing.T) {
	p, err := NewPipeline(testConfig(), nil, NewLexicalIndex(nil), nil, nil, nil)
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "xin chào")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipeline_Search_DenseFailureFallsBackToLexical(t *testing.T) {
	lexical := NewLexicalIndex(nil)
	lexical.Add([]vectorstore.Document{
		{ID: "greet", Content: "Ký hiệu xin chào."},
	})
	store := &fakeStore{err: errors.New("embedding backend down")}

	p, err := NewPipeline(testConfig(), store, lexical, nil, nil, nil)
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "xin chào")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestPipeline_Search_TopKLimit(t *testing.T) {
	lexical := NewLexicalIndex(nil)
	docs := make([]vectorstore.Document, 8)
	contents := []string{
		"Ký hiệu xin chào một.",
		"Ký hiệu xin chào hai.",
		"Ký hiệu xin chào ba.",
		"Ký hiệu xin chào bốn.",
		"Ký hiệu xin chào năm.",
		"Ký hiệu xin chào sáu.",
		"Ký hiệu xin chào bảy.",
		"Ký hiệu xin chào tám.",
	}
	for i := range docs {
		docs[i] = vectorstore.Document{ID: contents[i], Content: contents[i]}
	}
	lexical.Add(docs)

	cfg := Config{DenseK: 5, LexicalK: 8, TopK: 5}
	p, err := NewPipeline(cfg, nil, lexical, nil, nil, nil)
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "xin chào")
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(Config{}, nil, NewLexicalIndex(nil), nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPipeline(testConfig(), nil, nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFuse(t *testing.T) {
	dense := []vectorstore.SearchResult{
		{ID: "a", Content: "A"},
		{ID: "b", Content: "B"},
	}
	sparse := []vectorstore.SearchResult{
		{ID: "b", Content: "B"},
		{ID: "c", Content: "C"},
	}

	fused := fuse(dense, sparse)
	require.Len(t, fused, 3)

	// "b" appears in both lists so it accumulates both contributions and
	// outranks the single-list candidates.
	assert.Equal(t, "b", fused[0].ID)
}
