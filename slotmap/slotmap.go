// Package slotmap implements a generational arena. Elements are addressed by
// Handle values which stay cheap to copy and detect reuse of a freed slot in
// O(1) by comparing versions.
package slotmap

import (
	"iter"
	"math"
)

const (
	// DefaultVersionBits keeps handles compact. A slot can be reused
	// 2^(bits-1) times before an old handle could alias a new element.
	DefaultVersionBits = 8

	// MaxLen is the largest element count an arena supports. Index 0 is
	// the sentinel and math.MaxUint32 is reserved for Null.
	MaxLen = math.MaxUint32 - 1
)

// slot is either occupied (odd version, value is meaningful) or vacant (even
// version, next links the free list). The parity of version is the tag.
type slot[V any] struct {
	value   V
	next    uint32
	version uint32
}

func (s *slot[V]) occupied() bool {
	return s.version&1 == 1
}

// Arena stores values of type V in a growable slot table.
type Arena[V any] struct {
	slots       []slot[V]
	freeHead    uint32
	live        int
	versionMask uint32
	maxLen      uint32
}

// Option configures an Arena.
type Option func(*options)

type options struct {
	versionBits uint
	capacity    int
	maxLen      uint32
}

// WithVersionBits sets the width of the per-slot version counter (2..32).
func WithVersionBits(bits uint) Option {
	return func(o *options) {
		o.versionBits = bits
	}
}

// WithCapacity pre-sizes the slot table.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMaxLen lowers the element ceiling below MaxLen.
func WithMaxLen(n uint32) Option {
	return func(o *options) {
		o.maxLen = n
	}
}

// New creates an empty arena.
func New[V any](opts ...Option) *Arena[V] {
	o := options{versionBits: DefaultVersionBits, maxLen: MaxLen}
	for _, opt := range opts {
		opt(&o)
	}
	if o.versionBits < 2 || o.versionBits > 32 {
		panic("slotmap: version bits must be between 2 and 32")
	}
	if o.maxLen == 0 || o.maxLen > MaxLen {
		o.maxLen = MaxLen
	}

	a := &Arena[V]{
		slots:       make([]slot[V], 1, o.capacity+1),
		versionMask: uint32(uint64(1)<<o.versionBits - 1),
		maxLen:      o.maxLen,
	}
	return a
}

func (a *Arena[V]) bump(v uint32) uint32 {
	return (v + 1) & a.versionMask
}

// Insert stores v and returns its handle. The most recently freed slot is
// reused first. Inserting past the element ceiling panics.
func (a *Arena[V]) Insert(v V) Handle {
	var idx uint32
	if a.freeHead != 0 {
		idx = a.freeHead
		a.freeHead = a.slots[idx].next
	} else {
		if uint64(len(a.slots)-1) >= uint64(a.maxLen) {
			panic(&CeilingError{Ceiling: "arena element count", Limit: uint64(a.maxLen)})
		}
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[V]{})
	}

	s := &a.slots[idx]
	s.version = a.bump(s.version)
	s.value = v
	s.next = 0
	a.live++
	return Handle{Index: idx, Version: s.version}
}

func (a *Arena[V]) lookup(h Handle) *slot[V] {
	if h.Index == 0 || uint64(h.Index) >= uint64(len(a.slots)) {
		return nil
	}
	s := &a.slots[h.Index]
	if s.version != h.Version || !s.occupied() {
		return nil
	}
	return s
}

// Remove detaches and returns the value addressed by h. A stale handle
// returns false and leaves the arena untouched.
func (a *Arena[V]) Remove(h Handle) (V, bool) {
	var zero V
	s := a.lookup(h)
	if s == nil {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.version = a.bump(s.version)
	s.next = a.freeHead
	a.freeHead = h.Index
	a.live--
	return v, true
}

// Get returns a copy of the value addressed by h.
func (a *Arena[V]) Get(h Handle) (V, bool) {
	s := a.lookup(h)
	if s == nil {
		var zero V
		return zero, false
	}
	return s.value, true
}

// GetPtr returns a pointer to the value addressed by h. The pointer is valid
// until the next Insert grows the table.
func (a *Arena[V]) GetPtr(h Handle) (*V, bool) {
	s := a.lookup(h)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// GetUnchecked returns the value stored at index without any version check.
// The caller guarantees that index addresses an occupied slot.
func (a *Arena[V]) GetUnchecked(index uint32) *V {
	return &a.slots[index].value
}

// HandleAt returns the live handle for index, if the slot is occupied.
func (a *Arena[V]) HandleAt(index uint32) (Handle, bool) {
	if index == 0 || uint64(index) >= uint64(len(a.slots)) {
		return Handle{}, false
	}
	s := &a.slots[index]
	if !s.occupied() {
		return Handle{}, false
	}
	return Handle{Index: index, Version: s.version}, true
}

// Contains reports whether h addresses a live element.
func (a *Arena[V]) Contains(h Handle) bool {
	return a.lookup(h) != nil
}

// Len returns the number of live elements.
func (a *Arena[V]) Len() int {
	return a.live
}

// Cap returns one past the highest index ever handed out.
func (a *Arena[V]) Cap() int {
	return len(a.slots)
}

// VersionBits returns the configured width of the version counter.
func (a *Arena[V]) VersionBits() uint {
	bits := uint(0)
	for m := a.versionMask; m != 0; m >>= 1 {
		bits++
	}
	return bits
}

// Clear removes every element. Outstanding handles become stale.
func (a *Arena[V]) Clear() {
	for i := uint32(len(a.slots)) - 1; i > 0; i-- {
		s := &a.slots[i]
		if !s.occupied() {
			continue
		}
		a.Remove(Handle{Index: i, Version: s.version})
	}
}

// All yields every live element in ascending index order.
func (a *Arena[V]) All() iter.Seq2[Handle, *V] {
	return func(yield func(Handle, *V) bool) {
		for i := 1; i < len(a.slots); i++ {
			s := &a.slots[i]
			if !s.occupied() {
				continue
			}
			if !yield(Handle{Index: uint32(i), Version: s.version}, &s.value) {
				return
			}
		}
	}
}

// Retain removes every element for which keep returns false.
func (a *Arena[V]) Retain(keep func(Handle, *V) bool) {
	for i := 1; i < len(a.slots); i++ {
		s := &a.slots[i]
		if !s.occupied() {
			continue
		}
		h := Handle{Index: uint32(i), Version: s.version}
		if !keep(h, &s.value) {
			a.Remove(h)
		}
	}
}
