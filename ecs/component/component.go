// Package component defines the identities of component kinds. A kind is a
// small integer assigned once per process; scenes map kinds to presence bits
// when they register them.
package component

import (
	"errors"
	"reflect"
	"sync/atomic"
)

var (
	ErrEntityNotAlive    = errors.New("ecs: entity not alive")
	ErrInvalidKind       = errors.New("ecs: invalid component kind")
	ErrNotRegistered     = errors.New("ecs: component kind not registered in scene")
	ErrAlreadyRegistered = errors.New("ecs: component kind already registered in scene")
)

type ID uint32

var nextID atomic.Uint32

// ComponentKind is the typed identity of a component. The zero value is
// invalid.
type ComponentKind[T any] struct {
	id   ID
	name string
}

// NewComponent allocates a new kind for T, named after the Go type.
func NewComponent[T any]() ComponentKind[T] {
	return NewNamedComponent[T](reflect.TypeFor[T]().String())
}

// NewNamedComponent allocates a new kind for T with an explicit name. Two
// kinds may share a Go type; they are still distinct kinds.
func NewNamedComponent[T any](name string) ComponentKind[T] {
	return ComponentKind[T]{id: ID(nextID.Add(1)), name: name}
}

func (k ComponentKind[T]) ID() ID {
	return k.id
}

func (k ComponentKind[T]) Name() string {
	return k.name
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// Kind is the untyped view of a ComponentKind, used where kinds of different
// types are mixed (filters, deferred request targets).
type Kind interface {
	ID() ID
	Name() string
	Valid() bool
}
