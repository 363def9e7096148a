package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsignlabs/vsignd/internal/retrieval"
	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

func TestClockTool(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, loc)
	c := NewClockTool(func() time.Time { return fixed })

	assert.Equal(t, "get_current_time", c.Name())

	out, err := c.Call(context.Background(), "")
	require.NoError(t, err)

	var payload clockPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "2026-03-14T15:09:26+07:00", payload.ISOFormat)
	assert.Equal(t, "+07:00", payload.TimezoneOffset)
	assert.Equal(t, "Saturday, 14 March 2026, 15:09", payload.HumanReadable)
	assert.Contains(t, payload.Note, "+07:00")
}

func TestClockTool_NonDefaultZone(t *testing.T) {
	loc := time.FixedZone("ACST", 9*3600+1800)
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, loc)
	c := NewClockTool(func() time.Time { return fixed })

	out, err := c.Call(context.Background(), "")
	require.NoError(t, err)

	var payload clockPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "+09:30", payload.TimezoneOffset)
	assert.Contains(t, payload.Note, "+09:30")
	assert.NotContains(t, payload.Note, "+07:00")
}

func newTestPipeline(t *testing.T) *retrieval.Pipeline {
	t.Helper()
	lexical := retrieval.NewLexicalIndex(nil)
	lexical.Add([]vectorstore.Document{
		{
			ID:      "greet",
			Content: "Ký hiệu xin chào: đưa tay lên ngang trán.",
			Metadata: map[string]string{
				"Video": "https://cdn.example.com/xin-chao.mp4",
			},
		},
	})
	p, err := retrieval.NewPipeline(
		retrieval.Config{DenseK: 5, LexicalK: 5, TopK: 5},
		nil, lexical, nil, nil, nil,
	)
	require.NoError(t, err)
	return p
}

func TestKnowledgeTool_Call(t *testing.T) {
	k := NewKnowledgeTool(newTestPipeline(t), nil)
	assert.Equal(t, "search_knowledge", k.Name())

	out, err := k.Call(context.Background(), `{"query":"xin chào"}`)
	require.NoError(t, err)

	results, ok := DecodeKnowledgePayload(out)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ID)
	assert.Contains(t, results[0].Content, "xin chào")
	require.NotNil(t, results[0].Media.Video)
	assert.Equal(t, "https://cdn.example.com/xin-chao.mp4", *results[0].Media.Video)
}

func TestKnowledgeTool_NilPipeline(t *testing.T) {
	k := NewKnowledgeTool(nil, nil)

	out, err := k.Call(context.Background(), `{"query":"xin chào"}`)
	require.NoError(t, err)

	results, ok := DecodeKnowledgePayload(out)
	require.True(t, ok)
	assert.Empty(t, results)
}

func TestKnowledgeTool_BadArgs(t *testing.T) {
	k := NewKnowledgeTool(nil, nil)

	_, err := k.Call(context.Background(), "{broken")
	require.Error(t, err)

	_, err = k.Call(context.Background(), `{}`)
	require.Error(t, err)
}

func TestPracticeTool_Call(t *testing.T) {
	p := NewPracticeTool()
	assert.Equal(t, "start_practice", p.Name())

	t.Run("with sign", func(t *testing.T) {
		out, err := p.Call(context.Background(), `{"sign":"xin chào"}`)
		require.NoError(t, err)

		action, ok := DecodePracticeAction(out)
		require.True(t, ok)
		assert.Equal(t, PracticeActionName, action.Action)
		require.NotNil(t, action.Sign)
		assert.Equal(t, "xin chào", *action.Sign)
	})

	t.Run("free practice", func(t *testing.T) {
		out, err := p.Call(context.Background(), `{}`)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(out), &raw))
		assert.Equal(t, "null", string(raw["sign"]))

		action, ok := DecodePracticeAction(out)
		require.True(t, ok)
		assert.Nil(t, action.Sign)
	})
}

func TestDecodePracticeAction_Rejects(t *testing.T) {
	_, ok := DecodePracticeAction("not json")
	assert.False(t, ok)

	_, ok = DecodePracticeAction(`{"action":"OTHER"}`)
	assert.False(t, ok)

	_, ok = DecodePracticeAction(`{"results":[]}`)
	assert.False(t, ok)
}

func TestSchemaToMap(t *testing.T) {
	assert.Equal(t, "object", schemaToMap(nil)["type"])

	m := schemaToMap(map[string]any{"type": "object", "required": []any{"q"}})
	assert.Equal(t, "object", m["type"])
}
