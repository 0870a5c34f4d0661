package ecs

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/slotmap"
)

type entityRecord struct {
	mask Mask
}

// Scene owns entities and the component columns attached to them. Entity
// handles from one scene are meaningless in another.
type Scene struct {
	entities *slotmap.Arena[entityRecord]
	columns  []storage
	bits     map[component.ID]uint8
	log      zerolog.Logger
}

// SceneOption configures a Scene.
type SceneOption func(*sceneOptions)

type sceneOptions struct {
	versionBits uint
	capacity    int
	log         zerolog.Logger
}

// WithEntityVersionBits sets the generation width of entity handles.
func WithEntityVersionBits(bits uint) SceneOption {
	return func(o *sceneOptions) {
		o.versionBits = bits
	}
}

// WithInitialCapacity pre-sizes the entity table.
func WithInitialCapacity(n int) SceneOption {
	return func(o *sceneOptions) {
		o.capacity = n
	}
}

// WithSceneLogger sets the logger used by the scene.
func WithSceneLogger(log zerolog.Logger) SceneOption {
	return func(o *sceneOptions) {
		o.log = log
	}
}

// NewScene creates an empty scene. Entity generations default to 32 bits.
func NewScene(opts ...SceneOption) *Scene {
	o := sceneOptions{versionBits: 32, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scene{
		entities: slotmap.New[entityRecord](
			slotmap.WithVersionBits(o.versionBits),
			slotmap.WithCapacity(o.capacity),
		),
		bits: make(map[component.ID]uint8, MaxKinds),
		log:  o.log,
	}
}

// Spawn creates an entity with no components.
func (s *Scene) Spawn() Entity {
	return entityOf(s.entities.Insert(entityRecord{}))
}

// Despawn destroys e and clears every component attached to it. It returns
// false for an entity that is not alive.
func (s *Scene) Despawn(e Entity) bool {
	rec, ok := s.entities.Remove(e.handle())
	if !ok {
		return false
	}
	rec.mask.Bits(func(bit uint8) {
		s.columns[bit].remove(e)
	})
	return true
}

// Alive reports whether e refers to a live entity of this scene.
func (s *Scene) Alive(e Entity) bool {
	return s.entities.Contains(e.handle())
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return s.entities.Len()
}

// Mask returns the presence mask of e.
func (s *Scene) Mask(e Entity) (Mask, bool) {
	rec, ok := s.entities.Get(e.handle())
	return rec.mask, ok
}

// Entities returns every live entity in ascending index order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, 0, s.entities.Len())
	for h := range s.entities.All() {
		out = append(out, entityOf(h))
	}
	return out
}

// Kinds returns the number of registered component kinds.
func (s *Scene) Kinds() int {
	return len(s.columns)
}

// Bit returns the presence bit assigned to kind.
func (s *Scene) Bit(kind component.Kind) (uint8, bool) {
	bit, ok := s.bits[kind.ID()]
	return bit, ok
}

func (s *Scene) register(id component.ID, name string, build func(bit uint8, n int) storage) error {
	if id == 0 {
		return eris.Wrapf(component.ErrInvalidKind, "register %q", name)
	}
	if _, ok := s.bits[id]; ok {
		return eris.Wrapf(component.ErrAlreadyRegistered, "register %q", name)
	}
	if len(s.columns) >= MaxKinds {
		panic(&slotmap.CeilingError{Ceiling: "component kinds per scene", Limit: MaxKinds})
	}
	bit := uint8(len(s.columns))
	s.columns = append(s.columns, build(bit, s.entities.Cap()))
	s.bits[id] = bit
	s.log.Debug().Str("kind", name).Uint8("bit", bit).Msg("component kind registered")
	return nil
}

func (s *Scene) column(id component.ID) (storage, uint8, bool) {
	bit, ok := s.bits[id]
	if !ok {
		return nil, 0, false
	}
	return s.columns[bit], bit, true
}

func (s *Scene) record(e Entity) *entityRecord {
	rec, ok := s.entities.GetPtr(e.handle())
	if !ok {
		return nil
	}
	return rec
}

// AttachAny stores v under the kind identified by id. It is the untyped path
// used by loaders that only know kinds at runtime.
func (s *Scene) AttachAny(e Entity, id component.ID, v any) error {
	col, bit, ok := s.column(id)
	if !ok {
		return eris.Wrapf(component.ErrNotRegistered, "attach kind %d", id)
	}
	rec := s.record(e)
	if rec == nil {
		return eris.Wrapf(component.ErrEntityNotAlive, "attach %s to %s", col.kindName(), e)
	}
	if err := col.attachAny(e, v); err != nil {
		return eris.Wrap(err, "attach")
	}
	rec.mask.Set(bit)
	return nil
}

// ReadAny returns the value of kind id attached to e.
func (s *Scene) ReadAny(e Entity, id component.ID) (any, bool) {
	col, _, ok := s.column(id)
	if !ok {
		return nil, false
	}
	return col.readAny(e)
}

func (s *Scene) lease(e Entity, id component.ID) (any, leaseState) {
	col, bit, ok := s.column(id)
	if !ok {
		return nil, leaseGone
	}
	rec := s.record(e)
	if rec == nil {
		return nil, leaseGone
	}
	v, state := col.lease(e)
	if state == leaseGone && rec.mask.Has(bit) {
		// attached but out of its cell: already leased to its own hook
		return nil, leaseBusy
	}
	return v, state
}

// restore puts a leased value back unless the entity died, the kind was
// detached, or a fresh value was attached while the value was out.
func (s *Scene) restore(e Entity, id component.ID, v any) {
	col, bit, ok := s.column(id)
	if !ok {
		return
	}
	rec := s.record(e)
	if rec == nil || !rec.mask.Has(bit) {
		return
	}
	col.restore(e, v)
}
