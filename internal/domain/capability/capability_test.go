package capability

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleInvokeCopiesResult(t *testing.T) {
	shared := map[string]Value{"n": float64(1)}
	h := New("state", func(context.Context, []Value) (Value, error) {
		return shared, nil
	})

	out, err := h.Invoke(context.Background(), nil)
	require.NoError(t, err)

	copied, ok := out.(map[string]Value)
	require.True(t, ok)
	copied["n"] = float64(99)
	assert.Equal(t, float64(1), shared["n"], "invoke must return a structural copy")
}

func TestHandleInvokeRejectsBadArguments(t *testing.T) {
	h := New("noop", func(_ context.Context, args []Value) (Value, error) {
		return nil, nil
	})

	_, err := h.Invoke(context.Background(), []Value{func() {}})
	assert.Error(t, err)
}

func TestHandleInvokePropagatesError(t *testing.T) {
	h := New("flaky", func(context.Context, []Value) (Value, error) {
		return nil, fmt.Errorf("boom")
	})

	_, err := h.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestHandleNotImplemented(t *testing.T) {
	h := Handle{Name: "ghost"}
	_, err := h.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
	assert.False(t, h.Valid())
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"web_search", true},
		{"double", true},
		{"_internal", true},
		{"v2", true},
		{"", false},
		{"1st", false},
		{"web-search", false},
		{"a.b", false},
		{"with space", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidName(tt.name), "name %q", tt.name)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	fn := func(context.Context, []Value) (Value, error) { return nil, nil }

	require.NoError(t, r.Register(New("alpha", fn)))
	require.NoError(t, r.Register(New("beta", fn)))

	t.Run("duplicate rejected", func(t *testing.T) {
		assert.Error(t, r.Register(New("alpha", fn)))
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		assert.Error(t, r.Register(New("not-valid", fn)))
	})

	t.Run("incomplete handle rejected", func(t *testing.T) {
		assert.Error(t, r.Register(Handle{Name: "empty"}))
	})

	t.Run("names sorted", func(t *testing.T) {
		assert.Equal(t, []string{"alpha", "beta"}, r.Names())
	})
}

func TestRegistrySelect(t *testing.T) {
	r := NewRegistry()
	fn := func(context.Context, []Value) (Value, error) { return nil, nil }
	require.NoError(t, r.Register(New("alpha", fn)))
	require.NoError(t, r.Register(New("beta", fn)))

	selected, err := r.Select([]string{"alpha"})
	require.NoError(t, err)
	assert.Len(t, selected, 1)
	assert.Contains(t, selected, "alpha")

	_, err = r.Select([]string{"alpha", "missing"})
	assert.Error(t, err)

	selected, err = r.Select(nil)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	fn := func(context.Context, []Value) (Value, error) { return nil, nil }
	require.NoError(t, r.Register(New("alpha", fn)))

	r.Unregister("alpha")
	_, ok := r.Get("alpha")
	assert.False(t, ok)
}
