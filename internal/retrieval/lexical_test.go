package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

func TestLexicalIndex_Search(t *testing.T) {
	idx := NewLexicalIndex(nil)
	idx.Add([]vectorstore.Document{
		{ID: "greet", Content: "Ký hiệu xin chào: đưa tay lên ngang trán rồi hạ xuống."},
		{ID: "thanks", Content: "Ký hiệu cảm ơn: đặt tay lên cằm rồi đưa về phía trước."},
		{ID: "path", Content: "Lộ trình học dành cho người mới bắt đầu với bảng chữ cái."},
		{ID: "empty", Content: "   "},
	})

	require.Equal(t, 3, idx.Count())

	t.Run("exact term matches first", func(t *testing.T) {
		got := idx.Search(context.Background(), "xin chào", 3)
		require.NotEmpty(t, got)
		assert.Equal(t, "greet", got[0].ID)
	})

	t.Run("non-matching terms are excluded", func(t *testing.T) {
		got := idx.Search(context.Background(), "lộ trình", 3)
		require.Len(t, got, 1)
		assert.Equal(t, "path", got[0].ID)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		got := idx.Search(context.Background(), "zzzz", 3)
		assert.Empty(t, got)
	})

	t.Run("tokenless query yields empty slice", func(t *testing.T) {
		got := idx.Search(context.Background(), "!?!", 3)
		assert.Empty(t, got)
	})

	t.Run("k caps result count", func(t *testing.T) {
		got := idx.Search(context.Background(), "ký hiệu", 1)
		assert.Len(t, got, 1)
	})
}

func TestLexicalIndex_Empty(t *testing.T) {
	idx := NewLexicalIndex(nil)
	assert.Zero(t, idx.Count())
	assert.Empty(t, idx.Search(context.Background(), "xin chào", 5))
}

func TestLexicalIndex_ConcurrentAccess(t *testing.T) {
	idx := NewLexicalIndex(nil)
	idx.Add([]vectorstore.Document{{ID: "a", Content: "xin chào"}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			idx.Search(context.Background(), "xin", 1)
		}
	}()
	for i := 0; i < 10; i++ {
		idx.Add([]vectorstore.Document{{ID: "b", Content: "cảm ơn"}})
	}
	<-done
}
