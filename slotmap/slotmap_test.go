package slotmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertHandlesAreDistinct(t *testing.T) {
	a := New[int]()
	seen := make(map[Handle]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		h := a.Insert(i)
		_, dup := seen[h]
		require.False(t, dup, "duplicate handle %v", h)
		seen[h] = struct{}{}
	}
	assert.Equal(t, 1000, a.Len())
	assert.Equal(t, 1001, a.Cap())
}

func TestSentinelAndNull(t *testing.T) {
	a := New[string]()
	h := a.Insert("first")
	assert.Equal(t, uint32(1), h.Index, "index 0 is reserved")
	assert.Equal(t, uint32(1), h.Version)

	_, ok := a.Get(Null)
	assert.False(t, ok)
	_, ok = a.Get(Handle{})
	assert.False(t, ok)
	assert.True(t, Null.IsNull())
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "1v1", h.String())
}

func TestStaleHandleAfterReuse(t *testing.T) {
	a := New[string]()

	old := a.Insert("a")
	require.Equal(t, uint32(1), old.Version)

	v, ok := a.Remove(old)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	fresh := a.Insert("b")
	assert.Equal(t, old.Index, fresh.Index, "freed slot is reused")
	assert.Equal(t, uint32(3), fresh.Version)

	_, ok = a.Get(old)
	assert.False(t, ok)
	_, ok = a.Remove(old)
	assert.False(t, ok)
	assert.False(t, a.Contains(old))

	got, ok := a.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestFreeListIsLIFO(t *testing.T) {
	a := New[int]()
	h1 := a.Insert(1)
	h2 := a.Insert(2)
	h3 := a.Insert(3)

	a.Remove(h1)
	a.Remove(h3)

	assert.Equal(t, h3.Index, a.Insert(4).Index)
	assert.Equal(t, h1.Index, a.Insert(5).Index)
	assert.Equal(t, uint32(4), a.Insert(6).Index)
	assert.True(t, a.Contains(h2))
}

func TestVersionWrapsWithinWidth(t *testing.T) {
	cases := []struct {
		name string
		bits uint
	}{
		{"two_bits", 2},
		{"eight_bits", 8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := New[int](WithVersionBits(c.bits))
			limit := uint32(1)<<c.bits - 1
			var h Handle
			for i := 0; i < int(limit)*3; i++ {
				h = a.Insert(i)
				require.LessOrEqual(t, h.Version, limit)
				require.Equal(t, uint32(1), h.Version&1, "live versions are odd")
				require.NotZero(t, h.Version)
				_, ok := a.Remove(h)
				require.True(t, ok)
			}
			assert.Equal(t, 0, a.Len())
			assert.Equal(t, c.bits, a.VersionBits())
		})
	}
}

func TestGetPtrMutates(t *testing.T) {
	a := New[[]int]()
	h := a.Insert(nil)
	p, ok := a.GetPtr(h)
	require.True(t, ok)
	*p = append(*p, 7)

	got, _ := a.Get(h)
	assert.Equal(t, []int{7}, got)
	assert.Equal(t, []int{7}, *a.GetUnchecked(h.Index))
}

func TestRemoveZeroesValue(t *testing.T) {
	a := New[*int]()
	x := 5
	h := a.Insert(&x)
	a.Remove(h)
	assert.Nil(t, *a.GetUnchecked(h.Index))
}

func TestElementCeilingPanics(t *testing.T) {
	a := New[int](WithMaxLen(2))
	a.Insert(1)
	h := a.Insert(2)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ce, ok := r.(*CeilingError)
		require.True(t, ok)
		assert.Equal(t, "arena element count", ce.Ceiling)
		assert.Equal(t, uint64(2), ce.Limit)
	}()

	a.Remove(h)
	a.Insert(3) // reuses the freed slot
	a.Insert(4)
}

func TestGetDisjoint(t *testing.T) {
	a := New[int]()
	h1 := a.Insert(1)
	h2 := a.Insert(2)
	h3 := a.Insert(3)
	stale := a.Insert(4)
	a.Remove(stale)

	tests := []struct {
		name    string
		handles []Handle
		ok      bool
	}{
		{"distinct", []Handle{h1, h2, h3}, true},
		{"duplicate", []Handle{h1, h2, h1}, false},
		{"stale_last", []Handle{h1, h2, stale}, false},
		{"stale_first", []Handle{stale, h1}, false},
		{"empty", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ptrs, ok := a.GetDisjoint(tc.handles...)
			require.Equal(t, tc.ok, ok)
			if !ok {
				assert.Nil(t, ptrs)
			}

			// marks must be rolled back whatever the outcome
			for _, h := range []Handle{h1, h2, h3} {
				assert.True(t, a.Contains(h), "handle %v lost after %s", h, tc.name)
			}
			assert.False(t, a.Contains(stale))
		})
	}

	p1, p2, ok := a.GetPair(h1, h3)
	require.True(t, ok)
	*p1, *p2 = *p2, *p1
	v1, _ := a.Get(h1)
	v3, _ := a.Get(h3)
	assert.Equal(t, 3, v1)
	assert.Equal(t, 1, v3)
}

func TestAllAndRetain(t *testing.T) {
	a := New[int]()
	var hs []Handle
	for i := 0; i < 6; i++ {
		hs = append(hs, a.Insert(i))
	}
	a.Remove(hs[2])

	var order []int
	for _, v := range a.All() {
		order = append(order, *v)
	}
	assert.Equal(t, []int{0, 1, 3, 4, 5}, order)

	a.Retain(func(_ Handle, v *int) bool { return *v%2 == 1 })
	assert.Equal(t, 3, a.Len())

	h, ok := a.HandleAt(hs[1].Index)
	require.True(t, ok)
	assert.Equal(t, hs[1], h)
	_, ok = a.HandleAt(hs[0].Index)
	assert.False(t, ok)

	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Contains(hs[1]))
}

func TestHandleLess(t *testing.T) {
	assert.True(t, Handle{Index: 1, Version: 3}.Less(Handle{Index: 2, Version: 1}))
	assert.True(t, Handle{Index: 1, Version: 1}.Less(Handle{Index: 1, Version: 3}))
	assert.False(t, Handle{Index: 2, Version: 1}.Less(Handle{Index: 1, Version: 9}))
}
