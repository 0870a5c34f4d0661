package prefabs

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/gfx"
	"github.com/milk9111/slotengine/physics"
	"github.com/milk9111/slotengine/resource"
	"github.com/milk9111/slotengine/script"
	"github.com/milk9111/slotengine/slotmap"
)

var (
	ErrUnknownTemplate = errors.New("prefabs: unknown template")
	ErrUnknownResource = errors.New("prefabs: unknown resource")
)

// TextureFunc makes the image for a material.
type TextureFunc func(w, h int, c color.Color) *ebiten.Image

// Library turns a scene spec into resources and spawnable templates.
type Library struct {
	spec      *SceneSpec
	materials *resource.Manager[gfx.Material]
	meshes    *resource.Manager[gfx.Mesh]
	programs  map[string]*script.Program
}

// NewLibrary registers every material and mesh in spec. newTexture may be
// nil to create materials without images.
func NewLibrary(spec *SceneSpec, materials *resource.Manager[gfx.Material], meshes *resource.Manager[gfx.Mesh], newTexture TextureFunc) (*Library, error) {
	for _, m := range spec.Materials {
		mat := gfx.Material{Tint: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
		if newTexture != nil {
			mat.Image = newTexture(max(m.Size[0], 1), max(m.Size[1], 1), m.Color.RGBA)
		} else {
			mat.Tint = m.Color.RGBA
		}
		if _, err := materials.Add(m.Name, mat); err != nil {
			return nil, err
		}
	}
	for _, m := range spec.Meshes {
		if _, err := meshes.Add(m.Name, gfx.Quad(m.Width, m.Height)); err != nil {
			return nil, err
		}
	}
	return &Library{
		spec:      spec,
		materials: materials,
		meshes:    meshes,
		programs:  make(map[string]*script.Program),
	}, nil
}

// RegisterKinds registers the component kinds templates may attach.
func RegisterKinds(s *ecs.Scene) error {
	return errors.Join(
		ecs.Register(s, gfx.TransformComponent),
		ecs.Register(s, gfx.SpriteComponent),
		ecs.Register(s, physics.BodyComponent),
		ecs.Register(s, script.BehaviorComponent),
	)
}

func (l *Library) program(name string) (*script.Program, error) {
	if p, ok := l.programs[name]; ok {
		return p, nil
	}
	src, err := LoadScript(name)
	if err != nil {
		return nil, eris.Wrapf(err, "prefabs: load script %s", name)
	}
	p, err := script.Compile(name, src)
	if err != nil {
		return nil, err
	}
	l.programs[name] = p
	return p, nil
}

// Spawn creates an entity from the template called name at x, y.
func (l *Library) Spawn(s *ecs.Scene, sh slotmap.Handle, name string, x, y float64) (ecs.Entity, error) {
	t, ok := l.spec.Template(name)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownTemplate, "spawn %q", name)
	}
	mat, ok := l.materials.Lookup(t.Material)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownResource, "template %q material %q", name, t.Material)
	}
	meshHandle, ok := l.meshes.Lookup(t.Mesh)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownResource, "template %q mesh %q", name, t.Mesh)
	}
	mesh, _ := l.meshes.Get(meshHandle)

	var prog *script.Program
	if t.Script != "" {
		p, err := l.program(t.Script)
		if err != nil {
			return 0, err
		}
		prog = p
	}

	e := s.Spawn()
	err := errors.Join(
		ecs.Attach(s, e, gfx.TransformComponent, gfx.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}),
		ecs.Attach(s, e, gfx.SpriteComponent, gfx.Sprite{
			Mesh:     meshHandle,
			Material: mat,
			Order:    t.Order,
			OriginX:  mesh.Width() / 2,
			OriginY:  mesh.Height() / 2,
		}),
	)
	if t.Body != nil {
		err = errors.Join(err, ecs.Attach(s, e, physics.BodyComponent, physics.Body{
			Width:      mesh.Width(),
			Height:     mesh.Height(),
			Mass:       t.Body.Mass,
			Friction:   t.Body.Friction,
			Elasticity: t.Body.Elasticity,
			Static:     t.Body.Static,
		}))
	}
	if prog != nil {
		err = errors.Join(err, script.Attach(s, sh, e, prog))
	}
	if err != nil {
		s.Despawn(e)
		return 0, err
	}
	return e, nil
}
