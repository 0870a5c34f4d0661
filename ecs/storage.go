package ecs

import (
	"fmt"

	"github.com/milk9111/slotengine/ecs/component"
)

// Columns are paged so that growing never moves existing cells; a pointer
// handed to a system stays valid while other entities are spawned.
const (
	pageShift = 10
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
)

type cell[T any] struct {
	value    T
	gen      uint32
	present  bool
	borrowed bool
}

// storage is the type-erased capability set a scene needs from a column.
type storage interface {
	kindID() component.ID
	kindName() string
	length() int
	grow(n int)
	attachAny(e Entity, v any) error
	readAny(e Entity) (any, bool)
	remove(e Entity) bool
	lease(e Entity) (any, leaseState)
	restore(e Entity, v any)
}

// Column stores values of one component kind, indexed by entity index.
type Column[T any] struct {
	kind  component.ComponentKind[T]
	bit   uint8
	pages [][]cell[T]
}

func newColumn[T any](kind component.ComponentKind[T], bit uint8, n int) *Column[T] {
	c := &Column[T]{kind: kind, bit: bit}
	c.grow(n)
	return c
}

func (c *Column[T]) kindID() component.ID {
	return c.kind.ID()
}

func (c *Column[T]) kindName() string {
	return c.kind.Name()
}

// Bit is the presence bit assigned to this kind in its scene.
func (c *Column[T]) Bit() uint8 {
	return c.bit
}

func (c *Column[T]) length() int {
	return len(c.pages) << pageShift
}

// grow widens the column so that indices below n are addressable. New cells
// are absent.
func (c *Column[T]) grow(n int) {
	for c.length() < n {
		c.pages = append(c.pages, make([]cell[T], pageSize))
	}
}

func (c *Column[T]) at(index uint32) *cell[T] {
	p := int(index >> pageShift)
	if p >= len(c.pages) {
		return nil
	}
	return &c.pages[p][index&pageMask]
}

// live returns the cell for e if it holds a value written for e's generation.
func (c *Column[T]) live(e Entity) *cell[T] {
	cl := c.at(e.Index())
	if cl == nil || !cl.present || cl.gen != e.Generation() {
		return nil
	}
	return cl
}

func (c *Column[T]) set(e Entity, v T) {
	c.grow(int(e.Index()) + 1)
	cl := c.at(e.Index())
	if cl.borrowed && cl.gen != e.Generation() {
		// a borrow of the previous occupant of this index is still open
		panic(fmt.Sprintf("ecs: %s cell %d already borrowed", c.kind.Name(), e.Index()))
	}
	cl.value = v
	cl.gen = e.Generation()
	cl.present = true
}

func (c *Column[T]) get(e Entity) (T, bool) {
	cl := c.live(e)
	if cl == nil {
		var zero T
		return zero, false
	}
	return cl.value, true
}

func (c *Column[T]) ptr(e Entity) (*T, bool) {
	cl := c.live(e)
	if cl == nil {
		return nil, false
	}
	return &cl.value, true
}

func (c *Column[T]) attachAny(e Entity, v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("ecs: %s: cannot store %T", c.kind.Name(), v)
	}
	c.set(e, tv)
	return nil
}

func (c *Column[T]) readAny(e Entity) (any, bool) {
	return c.get(e)
}

func (c *Column[T]) remove(e Entity) bool {
	cl := c.live(e)
	if cl == nil {
		return false
	}
	var zero T
	cl.value = zero
	cl.present = false
	return true
}

type leaseState uint8

const (
	leaseOK leaseState = iota
	leaseGone
	leaseBusy
)

// lease moves the value out of its cell. Until restore, the cell reads as
// absent, so nothing else can reach the value while its owner mutates it.
// A cell that is currently borrowed cannot be leased.
func (c *Column[T]) lease(e Entity) (any, leaseState) {
	cl := c.live(e)
	if cl == nil {
		return nil, leaseGone
	}
	if cl.borrowed {
		return nil, leaseBusy
	}
	p := new(T)
	*p = cl.value
	var zero T
	cl.value = zero
	cl.present = false
	return p, leaseOK
}

// restore puts a leased value back. A value attached while the lease was out
// wins over the leased copy.
func (c *Column[T]) restore(e Entity, v any) {
	p, ok := v.(*T)
	if !ok {
		return
	}
	if c.live(e) != nil {
		return
	}
	c.set(e, *p)
}

// borrow runs fn with exclusive access to the cell for e. A nested borrow of
// the same cell is a programming error and panics.
func (c *Column[T]) borrow(e Entity, fn func(*T)) bool {
	cl := c.live(e)
	if cl == nil {
		return false
	}
	if cl.borrowed {
		panic(fmt.Sprintf("ecs: %s cell %d already borrowed", c.kind.Name(), e.Index()))
	}
	cl.borrowed = true
	defer func() { cl.borrowed = false }()
	fn(&cl.value)
	return true
}
