package resource

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/slotengine/slotmap"
)

func TestManagerAddLookup(t *testing.T) {
	m := NewManager[string]("texture")

	h, err := m.Add("brick", "brick.png")
	require.NoError(t, err)
	assert.Equal(t, slotmap.Handle{Index: 1, Version: 1}, h)

	got, ok := m.Lookup("brick")
	require.True(t, ok)
	assert.Equal(t, h, got)

	v, ok := m.Get(h)
	require.True(t, ok)
	assert.Equal(t, "brick.png", v)

	name, ok := m.Name(h)
	require.True(t, ok)
	assert.Equal(t, "brick", name)
}

func TestManagerAddErrors(t *testing.T) {
	tests := []struct {
		name    string
		add     string
		wantErr error
	}{
		{"duplicate", "brick", ErrDuplicateName},
		{"empty", "", ErrEmptyName},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager[int]("mesh")
			first, err := m.Add("brick", 1)
			require.NoError(t, err)

			h, err := m.Add(tc.add, 2)
			require.Error(t, err)
			assert.True(t, eris.Is(err, tc.wantErr))
			if tc.add != "" {
				assert.Equal(t, first, h, "duplicate returns the existing handle")
			}
			assert.Equal(t, 1, m.Len())
		})
	}
}

func TestManagerReleaseMakesHandlesStale(t *testing.T) {
	m := NewManager[string]("material")
	h, err := m.Add("a", "first")
	require.NoError(t, err)

	require.True(t, m.Release(h))
	assert.False(t, m.Release(h))
	_, ok := m.Lookup("a")
	assert.False(t, ok)

	h2, err := m.Add("a", "second")
	require.NoError(t, err)
	assert.Equal(t, h.Index, h2.Index)
	assert.NotEqual(t, h, h2)

	_, ok = m.Get(h)
	assert.False(t, ok)
	assert.False(t, m.Contains(h))
	v, ok := m.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestManagerAll(t *testing.T) {
	m := NewManager[int]("mesh", WithVersionBits(16))
	for i, name := range []string{"a", "b", "c"} {
		_, err := m.Add(name, i)
		require.NoError(t, err)
	}
	hb, _ := m.Lookup("b")
	m.Release(hb)

	var vals []int
	for _, v := range m.All() {
		vals = append(vals, v)
	}
	assert.Equal(t, []int{0, 2}, vals)
}
