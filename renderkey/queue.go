package renderkey

import (
	"cmp"
	"slices"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/slotmap"
)

// Item is one draw submitted for the frame.
type Item struct {
	Key    Key
	Entity ecs.Entity
}

// Queue collects draw items for one frame.
type Queue struct {
	items []Item
}

func NewQueue(capacity int) *Queue {
	return &Queue{items: make([]Item, 0, capacity)}
}

func (q *Queue) Push(k Key, e ecs.Entity) {
	q.items = append(q.items, Item{Key: k, Entity: e})
}

// Sort orders items by ascending key. Equal keys fall back to entity index so
// the result does not depend on submission order.
func (q *Queue) Sort() {
	slices.SortFunc(q.items, func(a, b Item) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity.Index(), b.Entity.Index())
	})
}

// Reset empties the queue and keeps its storage.
func (q *Queue) Reset() {
	q.items = q.items[:0]
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns the queued items. The slice is reused by the next Reset.
func (q *Queue) Items() []Item {
	return q.items
}

// Batch is a run of items sharing one material and mesh.
type Batch struct {
	Start, End int
	Material   slotmap.Handle
	Mesh       slotmap.Handle
}

func (b Batch) Len() int {
	return b.End - b.Start
}

// Batches splits sorted items wherever the decoded material or mesh changes.
// A renderer binds state once per batch.
func Batches(l Layout, items []Item) []Batch {
	var out []Batch
	for i, it := range items {
		f := l.Decode(it.Key)
		mat, mesh := f.Material(), f.Mesh()
		if n := len(out); n > 0 && out[n-1].Material == mat && out[n-1].Mesh == mesh {
			out[n-1].End = i + 1
			continue
		}
		out = append(out, Batch{Start: i, End: i + 1, Material: mat, Mesh: mesh})
	}
	return out
}
