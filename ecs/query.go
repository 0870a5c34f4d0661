package ecs

import "github.com/milk9111/slotengine/ecs/component"

// Filter accumulates required kinds and fetches the entities that carry all
// of them.
type Filter struct {
	scene   *Scene
	mask    Mask
	missing bool
}

// Filter starts an empty filter; with no kinds it matches every entity.
func (s *Scene) Filter() *Filter {
	return &Filter{scene: s}
}

// By adds kind to the filter. A kind the scene never registered matches no
// entity.
func (f *Filter) By(kind component.Kind) *Filter {
	bit, ok := f.scene.Bit(kind)
	if !ok {
		f.missing = true
		return f
	}
	f.mask.Set(bit)
	return f
}

func (f *Filter) Mask() Mask {
	return f.mask
}

// Fetch returns the matching entities in ascending index order.
func (f *Filter) Fetch() []Entity {
	if f.missing {
		return nil
	}
	return f.scene.match(f.mask)
}

// First returns the lowest-index matching entity.
func (f *Filter) First() (Entity, bool) {
	if f.missing {
		return 0, false
	}
	for h, rec := range f.scene.entities.All() {
		if rec.mask.Contains(f.mask) {
			return entityOf(h), true
		}
	}
	return 0, false
}

func (s *Scene) match(want Mask) []Entity {
	var out []Entity
	for h, rec := range s.entities.All() {
		if rec.mask.Contains(want) {
			out = append(out, entityOf(h))
		}
	}
	return out
}

// IntersectEntities returns the entities present in both sorted slices.
func IntersectEntities(a, b []Entity) []Entity {
	out := make([]Entity, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index() < b[j].Index():
			i++
		case a[i].Index() > b[j].Index():
			j++
		default:
			if a[i] == b[j] {
				out = append(out, a[i])
			}
			i++
			j++
		}
	}
	return out
}
