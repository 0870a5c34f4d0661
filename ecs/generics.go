package ecs

import (
	"github.com/rotisserie/eris"

	"github.com/milk9111/slotengine/ecs/component"
)

// Register adds a column for kind to the scene and assigns it the next
// presence bit. Registering the same kind twice returns
// component.ErrAlreadyRegistered; a 33rd kind panics.
func Register[T any](s *Scene, kind component.ComponentKind[T]) error {
	return s.register(kind.ID(), kind.Name(), func(bit uint8, n int) storage {
		return newColumn(kind, bit, n)
	})
}

// ColumnOf returns the typed column for kind.
func ColumnOf[T any](s *Scene, kind component.ComponentKind[T]) (*Column[T], bool) {
	col, _, ok := s.column(kind.ID())
	if !ok {
		return nil, false
	}
	typed, ok := col.(*Column[T])
	return typed, ok
}

// Attach stores value for e, replacing any previous value of the same kind.
func Attach[T any](s *Scene, e Entity, kind component.ComponentKind[T], value T) error {
	col, ok := ColumnOf(s, kind)
	if !ok {
		return eris.Wrapf(component.ErrNotRegistered, "attach %s", kind.Name())
	}
	rec := s.record(e)
	if rec == nil {
		return eris.Wrapf(component.ErrEntityNotAlive, "attach %s to %s", kind.Name(), e)
	}
	col.set(e, value)
	rec.mask.Set(col.bit)
	return nil
}

// Get returns a copy of the kind value attached to e.
func Get[T any](s *Scene, e Entity, kind component.ComponentKind[T]) (T, bool) {
	col, ok := ColumnOf(s, kind)
	if !ok {
		var zero T
		return zero, false
	}
	return col.get(e)
}

// Write returns a pointer to the kind value attached to e.
func Write[T any](s *Scene, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	col, ok := ColumnOf(s, kind)
	if !ok {
		return nil, false
	}
	return col.ptr(e)
}

func Has[T any](s *Scene, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Write(s, e, kind)
	return ok
}

// Detach removes the kind value from e and clears its presence bit.
func Detach[T any](s *Scene, e Entity, kind component.ComponentKind[T]) bool {
	col, ok := ColumnOf(s, kind)
	if !ok {
		return false
	}
	rec := s.record(e)
	if rec == nil {
		return false
	}
	rec.mask.Clear(col.bit)
	return col.remove(e)
}

// Borrow runs fn with exclusive access to the kind value attached to e.
func Borrow[T any](s *Scene, e Entity, kind component.ComponentKind[T], fn func(*T)) bool {
	col, ok := ColumnOf(s, kind)
	if !ok {
		return false
	}
	return col.borrow(e, fn)
}

// Each calls fn for every entity with kind attached, in ascending index order.
func Each[T any](s *Scene, kind component.ComponentKind[T], fn func(Entity, *T)) {
	col, ok := ColumnOf(s, kind)
	if !ok {
		return
	}
	want := Mask(0)
	want.Set(col.bit)
	for _, e := range s.match(want) {
		col.borrow(e, func(v *T) { fn(e, v) })
	}
}

// Each2 calls fn for every entity with both kinds attached. Each value is
// borrowed independently, so fn may mutate either one.
func Each2[A, B any](s *Scene, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	ca, ok := ColumnOf(s, ka)
	if !ok {
		return
	}
	cb, ok := ColumnOf(s, kb)
	if !ok {
		return
	}
	want := Mask(0)
	want.Set(ca.bit)
	want.Set(cb.bit)
	for _, e := range s.match(want) {
		ca.borrow(e, func(a *A) {
			cb.borrow(e, func(b *B) { fn(e, a, b) })
		})
	}
}

// Each3 is Each2 for three kinds.
func Each3[A, B, C any](s *Scene, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	ca, ok := ColumnOf(s, ka)
	if !ok {
		return
	}
	cb, ok := ColumnOf(s, kb)
	if !ok {
		return
	}
	cc, ok := ColumnOf(s, kc)
	if !ok {
		return
	}
	want := Mask(0)
	want.Set(ca.bit)
	want.Set(cb.bit)
	want.Set(cc.bit)
	for _, e := range s.match(want) {
		ca.borrow(e, func(a *A) {
			cb.borrow(e, func(b *B) {
				cc.borrow(e, func(c *C) { fn(e, a, b, c) })
			})
		})
	}
}
