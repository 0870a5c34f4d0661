package resource

import (
	"errors"
	"iter"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/slotengine/slotmap"
)

var (
	ErrDuplicateName = errors.New("resource: name already registered")
	ErrEmptyName     = errors.New("resource: empty name")
)

type entry[T any] struct {
	name  string
	value T
}

// Manager stores loaded resources of one type behind generational handles.
// Resources may also be looked up by the name they were added under.
type Manager[T any] struct {
	kind   string
	arena  *slotmap.Arena[entry[T]]
	byName map[string]slotmap.Handle
	log    zerolog.Logger
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	versionBits uint
	log         zerolog.Logger
}

// WithVersionBits sets the handle version width. Handles stored in render
// keys must fit the key layout's version fields.
func WithVersionBits(bits uint) Option {
	return func(o *options) {
		o.versionBits = bits
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NewManager creates a manager. kind names the resource type in logs.
func NewManager[T any](kind string, opts ...Option) *Manager[T] {
	o := options{versionBits: slotmap.DefaultVersionBits, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{
		kind:   kind,
		arena:  slotmap.New[entry[T]](slotmap.WithVersionBits(o.versionBits)),
		byName: make(map[string]slotmap.Handle),
		log:    o.log.With().Str("resource", kind).Logger(),
	}
}

// Add stores v under name.
func (m *Manager[T]) Add(name string, v T) (slotmap.Handle, error) {
	if name == "" {
		return slotmap.Null, eris.Wrapf(ErrEmptyName, "add %s", m.kind)
	}
	if h, ok := m.byName[name]; ok {
		return h, eris.Wrapf(ErrDuplicateName, "add %s %q", m.kind, name)
	}
	h := m.arena.Insert(entry[T]{name: name, value: v})
	m.byName[name] = h
	m.log.Debug().Str("name", name).Stringer("handle", h).Msg("resource added")
	return h, nil
}

// Get returns the resource for h. A released or reused handle misses.
func (m *Manager[T]) Get(h slotmap.Handle) (T, bool) {
	e, ok := m.arena.Get(h)
	return e.value, ok
}

// Lookup returns the handle registered under name.
func (m *Manager[T]) Lookup(name string) (slotmap.Handle, bool) {
	h, ok := m.byName[name]
	return h, ok
}

// Name returns the name h was added under.
func (m *Manager[T]) Name(h slotmap.Handle) (string, bool) {
	e, ok := m.arena.Get(h)
	return e.name, ok
}

func (m *Manager[T]) Contains(h slotmap.Handle) bool {
	return m.arena.Contains(h)
}

// Release frees the resource for h. Handles to it, including ones packed
// into render keys, go stale.
func (m *Manager[T]) Release(h slotmap.Handle) bool {
	e, ok := m.arena.Remove(h)
	if !ok {
		return false
	}
	delete(m.byName, e.name)
	m.log.Debug().Str("name", e.name).Stringer("handle", h).Msg("resource released")
	return true
}

func (m *Manager[T]) Len() int {
	return m.arena.Len()
}

// All yields every live resource in slot order.
func (m *Manager[T]) All() iter.Seq2[slotmap.Handle, T] {
	return func(yield func(slotmap.Handle, T) bool) {
		for h, e := range m.arena.All() {
			if !yield(h, e.value) {
				return
			}
		}
	}
}
