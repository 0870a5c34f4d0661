package gfx

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/renderkey"
	"github.com/milk9111/slotengine/resource"
)

// Collect pushes a key for every visible sprite with a transform. Sprites
// whose mesh or material is no longer live are left out and counted.
func Collect(s *ecs.Scene, l renderkey.Layout, materials *resource.Manager[Material], meshes *resource.Manager[Mesh], q *renderkey.Queue) (int, error) {
	stale := 0
	var errs []error
	ecs.Each2(s, SpriteComponent, TransformComponent, func(e ecs.Entity, sp *Sprite, _ *Transform) {
		if sp.Hidden {
			return
		}
		if !materials.Contains(sp.Material) || !meshes.Contains(sp.Mesh) {
			stale++
			return
		}
		k, err := l.Encode(renderkey.FieldsFor(sp.Order, sp.Material, sp.Mesh))
		if err != nil {
			errs = append(errs, err)
			return
		}
		q.Push(k, e)
	})
	return stale, errors.Join(errs...)
}

type Camera struct {
	X, Y float64
	Zoom float64
}

// Stats describes the last frame drawn.
type Stats struct {
	Items   int
	Batches int
	Binds   int
	Stale   int
}

type drawBatch struct {
	material Material
	mesh     Mesh
	items    []renderkey.Item
}

type Renderer struct {
	layout    renderkey.Layout
	materials *resource.Manager[Material]
	meshes    *resource.Manager[Mesh]
	queue     *renderkey.Queue
	batches   []drawBatch
	stats     Stats
	log       zerolog.Logger
}

func NewRenderer(l renderkey.Layout, materials *resource.Manager[Material], meshes *resource.Manager[Mesh], log zerolog.Logger) *Renderer {
	return &Renderer{
		layout:    l,
		materials: materials,
		meshes:    meshes,
		queue:     renderkey.NewQueue(256),
		log:       log,
	}
}

func (r *Renderer) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	return r.stats
}

// prepare collects and sorts the scene's sprites and groups them into
// batches. A material or mesh is resolved once per batch; keys that no
// longer resolve are dropped.
func (r *Renderer) prepare(s *ecs.Scene) {
	r.queue.Reset()
	r.batches = r.batches[:0]
	r.stats = Stats{}

	stale, err := Collect(s, r.layout, r.materials, r.meshes, r.queue)
	if err != nil {
		r.log.Warn().Err(err).Msg("sprites skipped")
	}
	r.stats.Stale = stale
	r.queue.Sort()

	items := r.queue.Items()
	for _, b := range renderkey.Batches(r.layout, items) {
		mat, ok := r.materials.Get(b.Material)
		if !ok {
			r.stats.Stale += b.Len()
			continue
		}
		mesh, ok := r.meshes.Get(b.Mesh)
		if !ok {
			r.stats.Stale += b.Len()
			continue
		}
		r.batches = append(r.batches, drawBatch{material: mat, mesh: mesh, items: items[b.Start:b.End]})
		r.stats.Binds++
		r.stats.Items += b.Len()
	}
	r.stats.Batches = len(r.batches)
}

// Draw renders the scene's sprites onto screen in key order.
func (r *Renderer) Draw(s *ecs.Scene, screen *ebiten.Image, cam Camera) {
	if r == nil || s == nil || screen == nil {
		return
	}
	r.prepare(s)

	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	for _, b := range r.batches {
		if b.material.Image == nil {
			continue
		}
		img, ok := b.material.Image.SubImage(b.mesh.Source).(*ebiten.Image)
		if !ok {
			continue
		}

		for _, it := range b.items {
			t, ok := ecs.Get(s, it.Entity, TransformComponent)
			if !ok {
				continue
			}
			sp, ok := ecs.Get(s, it.Entity, SpriteComponent)
			if !ok {
				continue
			}

			sx := t.ScaleX
			if sx == 0 {
				sx = 1
			}
			sy := t.ScaleY
			if sy == 0 {
				sy = 1
			}

			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(-sp.OriginX, -sp.OriginY)
			op.GeoM.Scale(sx, sy)
			op.GeoM.Rotate(t.Rotation)
			op.GeoM.Scale(zoom, zoom)
			op.GeoM.Translate((t.X-cam.X)*zoom, (t.Y-cam.Y)*zoom)
			if b.material.Tint.A != 0 {
				op.ColorScale.ScaleWithColor(b.material.Tint)
			}
			screen.DrawImage(img, op)
		}
	}
}
