package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
	out  string
	err  error
	got  string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Schema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (s *stubTool) Call(_ context.Context, args string) (string, error) {
	s.got = args
	return s.out, s.err
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&stubTool{name: "alpha"}))
	require.NoError(t, r.Register(&stubTool{name: "beta"}))
	assert.Equal(t, 2, r.Len())

	err := r.Register(&stubTool{name: "alpha"})
	require.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil)
	want := &stubTool{name: "alpha"}
	require.NoError(t, r.Register(want))

	got, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, want, got.(*stubTool))

	_, err = r.Get("missing")
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistry_DefsPreserveOrder(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&stubTool{name: "zeta"}))
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))

	defs := r.Defs()
	require.Len(t, defs, 2)
	assert.Equal(t, "zeta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
	assert.Equal(t, []string{"zeta", "alpha"}, r.Names())
}

var errBoom = errors.New("boom")
