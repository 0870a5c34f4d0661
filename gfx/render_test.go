package gfx

import (
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/renderkey"
	"github.com/milk9111/slotengine/resource"
	"github.com/milk9111/slotengine/slotmap"
)

type fixture struct {
	scene     *ecs.Scene
	materials *resource.Manager[Material]
	meshes    *resource.Manager[Mesh]
	red, blue slotmap.Handle
	quad      slotmap.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		scene:     ecs.NewScene(),
		materials: resource.NewManager[Material]("material"),
		meshes:    resource.NewManager[Mesh]("mesh"),
	}
	require.NoError(t, ecs.Register(f.scene, SpriteComponent))
	require.NoError(t, ecs.Register(f.scene, TransformComponent))

	var err error
	f.red, err = f.materials.Add("red", Material{Tint: color.RGBA{R: 255, A: 255}})
	require.NoError(t, err)
	f.blue, err = f.materials.Add("blue", Material{Tint: color.RGBA{B: 255, A: 255}})
	require.NoError(t, err)
	f.quad, err = f.meshes.Add("quad", Quad(16, 16))
	require.NoError(t, err)
	return f
}

func (f *fixture) sprite(t *testing.T, sp Sprite) ecs.Entity {
	t.Helper()
	e := f.scene.Spawn()
	require.NoError(t, ecs.Attach(f.scene, e, SpriteComponent, sp))
	require.NoError(t, ecs.Attach(f.scene, e, TransformComponent, Transform{}))
	return e
}

func TestCollect(t *testing.T) {
	f := newFixture(t)
	a := f.sprite(t, Sprite{Mesh: f.quad, Material: f.red, Order: 1})
	b := f.sprite(t, Sprite{Mesh: f.quad, Material: f.blue, Order: 2})
	f.sprite(t, Sprite{Mesh: f.quad, Material: f.red, Hidden: true})

	noTransform := f.scene.Spawn()
	require.NoError(t, ecs.Attach(f.scene, noTransform, SpriteComponent, Sprite{Mesh: f.quad, Material: f.red}))

	q := renderkey.NewQueue(4)
	stale, err := Collect(f.scene, renderkey.DefaultLayout, f.materials, f.meshes, q)
	require.NoError(t, err)
	assert.Zero(t, stale)
	require.Equal(t, 2, q.Len())

	q.Sort()
	items := q.Items()
	assert.Equal(t, b, items[0].Entity, "higher order draws first")
	assert.Equal(t, a, items[1].Entity)
}

func TestCollectSkipsReleasedResources(t *testing.T) {
	f := newFixture(t)
	f.sprite(t, Sprite{Mesh: f.quad, Material: f.red})
	f.sprite(t, Sprite{Mesh: f.quad, Material: f.blue})

	require.True(t, f.materials.Release(f.red))
	_, err := f.materials.Add("green", Material{})
	require.NoError(t, err)

	q := renderkey.NewQueue(4)
	stale, err := Collect(f.scene, renderkey.DefaultLayout, f.materials, f.meshes, q)
	require.NoError(t, err)
	assert.Equal(t, 1, stale)
	assert.Equal(t, 1, q.Len())
}

func TestCollectReportsOverflow(t *testing.T) {
	f := newFixture(t)
	f.sprite(t, Sprite{Mesh: f.quad, Material: f.red, Order: 1000})

	q := renderkey.NewQueue(1)
	_, err := Collect(f.scene, renderkey.DefaultLayout, f.materials, f.meshes, q)
	assert.ErrorIs(t, err, renderkey.ErrFieldOverflow)
	assert.Zero(t, q.Len())
}

func TestRendererBindsOncePerBatch(t *testing.T) {
	f := newFixture(t)
	tri, err := f.meshes.Add("tri", Quad(8, 8))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f.sprite(t, Sprite{Mesh: f.quad, Material: f.red})
	}
	f.sprite(t, Sprite{Mesh: tri, Material: f.red})
	f.sprite(t, Sprite{Mesh: f.quad, Material: f.blue})

	r := NewRenderer(renderkey.DefaultLayout, f.materials, f.meshes, zerolog.Nop())
	r.prepare(f.scene)

	st := r.Stats()
	assert.Equal(t, 5, st.Items)
	assert.Equal(t, 3, st.Batches)
	assert.Equal(t, 3, st.Binds)
	assert.Zero(t, st.Stale)
	assert.Len(t, r.batches[0].items, 3)
}

func TestNilRendererStats(t *testing.T) {
	var r *Renderer
	assert.Equal(t, Stats{}, r.Stats())
}
