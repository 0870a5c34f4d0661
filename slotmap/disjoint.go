package slotmap

// GetDisjoint returns pointers to the values addressed by hs, in order. It
// succeeds only when every handle is live and no two handles are equal; on
// any failure nothing is returned and the arena is left unchanged.
//
// Each validated slot is marked by flipping its version parity, so a repeated
// handle no longer matches. Marks are always undone before returning.
func (a *Arena[V]) GetDisjoint(hs ...Handle) ([]*V, bool) {
	marked := 0
	rollback := func() {
		for _, h := range hs[:marked] {
			a.slots[h.Index].version ^= 1
		}
	}

	for _, h := range hs {
		if a.lookup(h) == nil {
			rollback()
			return nil, false
		}
		a.slots[h.Index].version ^= 1
		marked++
	}
	rollback()

	out := make([]*V, len(hs))
	for i, h := range hs {
		out[i] = &a.slots[h.Index].value
	}
	return out, true
}

// GetPair is GetDisjoint for exactly two handles.
func (a *Arena[V]) GetPair(h1, h2 Handle) (*V, *V, bool) {
	ptrs, ok := a.GetDisjoint(h1, h2)
	if !ok {
		return nil, nil, false
	}
	return ptrs[0], ptrs[1], true
}
