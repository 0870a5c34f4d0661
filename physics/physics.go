package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/gfx"
)

// Body links an entity to a Chipmunk body. Width and Height describe the box
// collider, centered on the entity's transform.
type Body struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool
}

var BodyComponent = component.NewNamedComponent[Body]("physics.body")

type World struct {
	space *cp.Space
	dt    float64
}

// NewWorld creates a space with the given downward gravity, stepped by dt
// each update.
func NewWorld(gravity, dt float64) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	return &World{space: space, dt: dt}
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// AddBox creates the collider for b at t and stores the runtime handles back
// into b.
func (w *World) AddBox(t gfx.Transform, b *Body) {
	width, height := b.Width, b.Height
	if width <= 0 || height <= 0 {
		width, height = 16, 16
		b.Width, b.Height = width, height
	}
	if b.Static {
		bb := cp.BB{L: t.X - width/2, B: t.Y - height/2, R: t.X + width/2, T: t.Y + height/2}
		shape := cp.NewBox2(w.space.StaticBody, bb, 0)
		shape.SetFriction(b.Friction)
		shape.SetElasticity(b.Elasticity)
		w.space.AddShape(shape)
		b.Body = w.space.StaticBody
		b.Shape = shape
		return
	}

	mass := b.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	body.SetPosition(cp.Vector{X: t.X, Y: t.Y})
	body.SetAngle(t.Rotation)

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(b.Friction)
	shape.SetElasticity(b.Elasticity)

	w.space.AddBody(body)
	w.space.AddShape(shape)
	b.Body = body
	b.Shape = shape
}

// Remove takes b's collider out of the space.
func (w *World) Remove(b *Body) {
	if b.Shape != nil {
		w.space.RemoveShape(b.Shape)
	}
	if b.Body != nil && !b.Static {
		w.space.RemoveBody(b.Body)
	}
	b.Body, b.Shape = nil, nil
}

// System steps a world and keeps transforms in sync with bodies. Bodies
// without a collider yet are created on first sight.
type System struct {
	world *World
	scene *ecs.Scene
}

func NewSystem(world *World, scene *ecs.Scene) *System {
	return &System{world: world, scene: scene}
}

func (s *System) Update(_ *ecs.Engine) error {
	if s == nil || s.world == nil || s.scene == nil {
		return nil
	}

	ecs.Each2(s.scene, BodyComponent, gfx.TransformComponent, func(_ ecs.Entity, b *Body, t *gfx.Transform) {
		if b.Shape == nil {
			s.world.AddBox(*t, b)
		}
	})

	s.world.space.Step(s.world.dt)

	ecs.Each2(s.scene, BodyComponent, gfx.TransformComponent, func(_ ecs.Entity, b *Body, t *gfx.Transform) {
		if b.Static || b.Body == nil {
			return
		}
		pos := b.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
		t.Rotation = b.Body.Angle()
	})
	return nil
}

// Despawn removes e's collider, if any, then the entity itself.
func (s *System) Despawn(e ecs.Entity) bool {
	if b, ok := ecs.Write(s.scene, e, BodyComponent); ok {
		s.world.Remove(b)
	}
	return s.scene.Despawn(e)
}
