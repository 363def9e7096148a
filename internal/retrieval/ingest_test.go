package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

const sampleCorpus = `[
  {
    "content": "Ký hiệu xin chào: đưa tay lên ngang trán rồi hạ xuống.",
    "metadata": {
      "Image": "https://cdn.example.com/xin-chao.png",
      "Video": ["https://cdn.example.com/xin-chao.mp4"],
      "Lesson": 1
    }
  },
  {
    "content": "",
    "metadata": {"Image": "https://cdn.example.com/skip.png"}
  },
  {
    "content": "Lộ trình học dành cho người mới bắt đầu.",
    "metadata": null
  }
]`

func writeCorpus(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCorpus(t *testing.T) {
	docs, err := LoadCorpus(writeCorpus(t, sampleCorpus))
	require.NoError(t, err)
	require.Len(t, docs, 2, "empty-content entries are skipped")

	assert.Equal(t, "corpus-0", docs[0].ID)
	assert.Equal(t, "https://cdn.example.com/xin-chao.png", docs[0].Metadata["Image"])
	assert.Equal(t, "[https://cdn.example.com/xin-chao.mp4]", docs[0].Metadata["Video"])
	assert.Equal(t, "1", docs[0].Metadata["Lesson"])

	assert.Equal(t, "corpus-2", docs[1].ID)
	assert.Nil(t, docs[1].Metadata)
}

func TestLoadCorpus_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCorpus(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := LoadCorpus(writeCorpus(t, "{not json"))
		require.Error(t, err)
	})
}

func TestIngest(t *testing.T) {
	path := writeCorpus(t, sampleCorpus)

	t.Run("populates lexical index", func(t *testing.T) {
		lexical := NewLexicalIndex(nil)
		require.NoError(t, Ingest(context.Background(), path, nil, lexical, nil))
		assert.Equal(t, 2, lexical.Count())
	})

	t.Run("populates vector store when empty", func(t *testing.T) {
		lexical := NewLexicalIndex(nil)
		store := &fakeStore{}
		require.NoError(t, Ingest(context.Background(), path, store, lexical, nil))
		assert.Equal(t, 2, store.added)
	})

	t.Run("skips vector store when already populated", func(t *testing.T) {
		lexical := NewLexicalIndex(nil)
		store := &fakeStore{results: []vectorstore.SearchResult{
			{ID: "corpus-0"}, {ID: "corpus-2"},
		}}
		require.NoError(t, Ingest(context.Background(), path, store, lexical, nil))
		assert.Zero(t, store.added)
	})

	t.Run("empty corpus is an error", func(t *testing.T) {
		lexical := NewLexicalIndex(nil)
		err := Ingest(context.Background(), writeCorpus(t, "[]"), nil, lexical, nil)
		require.Error(t, err)
	})
}
