package script

import (
	"errors"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/rotisserie/eris"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/gfx"
	"github.com/milk9111/slotengine/slotmap"
)

// Request kinds understood by behaviors. Scripts may use any other value
// for their own purposes.
const (
	Tick ecs.RequestKind = iota + 1
	Poke
)

var ErrNoProgram = errors.New("script: behavior has no program")

// handle(engine, state, kind, frame) is called once per request.
const dispatch = `
handle(__engine, __state, __kind, __frame)
`

// Program is a compiled script shared by many behaviors.
type Program struct {
	name     string
	compiled *tengo.Compiled
}

// Compile compiles src. The script must define a function
// handle(engine, state, kind, frame); compilation fails otherwise.
func Compile(name string, src []byte) (*Program, error) {
	full := string(src) + "\n" + dispatch
	s := tengo.NewScript([]byte(full))
	for _, g := range []struct {
		name  string
		value any
	}{
		{"__engine", map[string]any{}},
		{"__state", map[string]any{}},
		{"__kind", 0},
		{"__frame", 0},
	} {
		if err := s.Add(g.name, g.value); err != nil {
			return nil, eris.Wrapf(err, "script: compile %s: global %s", name, g.name)
		}
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, eris.Wrapf(err, "script: compile %s", name)
	}
	return &Program{name: name, compiled: compiled}, nil
}

func (p *Program) Name() string {
	return p.name
}

// Behavior runs a script whenever a request targets it. Each behavior
// keeps its own state map across requests.
type Behavior struct {
	Scene  slotmap.Handle
	Entity ecs.Entity
	rt     *runtime
}

var BehaviorComponent = component.NewNamedComponent[Behavior]("script.behavior")

type runtime struct {
	program  *Program
	compiled *tengo.Compiled
	state    *tengo.Map
	reposts  []ecs.RequestKind
	logs     []string
}

// Attach gives e in scene sh a behavior driven by p.
func Attach(s *ecs.Scene, sh slotmap.Handle, e ecs.Entity, p *Program) error {
	b := Behavior{
		Scene:  sh,
		Entity: e,
		rt: &runtime{
			program:  p,
			compiled: p.compiled.Clone(),
			state:    &tengo.Map{Value: map[string]tengo.Object{}},
		},
	}
	return ecs.Attach(s, e, BehaviorComponent, b)
}

// State returns a copy of the behavior's script state.
func (b *Behavior) State() map[string]any {
	if b == nil || b.rt == nil {
		return nil
	}
	out, _ := objectToAny(b.rt.state).(map[string]any)
	return out
}

// HandleRequest runs the script's handle function. Kinds the script asked
// to repost are queued for the next drain.
func (b *Behavior) HandleRequest(en *ecs.Engine, kind ecs.RequestKind) error {
	if b.rt == nil {
		return eris.Wrapf(ErrNoProgram, "behavior on %s", b.Entity)
	}
	rt := b.rt
	rt.reposts = rt.reposts[:0]
	rt.logs = rt.logs[:0]

	engine := b.engineObject(en)
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__kind", int(kind)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__frame", int64(en.Frame())); err != nil {
		return err
	}
	if err := rt.compiled.Run(); err != nil {
		return eris.Wrapf(err, "script %s on %s", rt.program.name, b.Entity)
	}

	log := en.Logger()
	for _, msg := range rt.logs {
		log.Debug().Str("script", rt.program.name).Stringer("entity", b.Entity).Msg(msg)
	}
	target := ecs.EntityTarget(b.Scene, b.Entity, BehaviorComponent)
	for _, k := range rt.reposts {
		en.Post(ecs.Request{Target: target, Kind: k})
	}
	return nil
}

func (b *Behavior) engineObject(en *ecs.Engine) *tengo.ImmutableMap {
	rt := b.rt
	scene, _ := en.Scene(b.Scene)
	values := map[string]tengo.Object{}

	values["repost"] = &tengo.UserFunction{Name: "repost", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		k, ok := tengo.ToInt(args[0])
		if !ok || k <= 0 || k > 0xffff {
			return tengo.FalseValue, nil
		}
		rt.reposts = append(rt.reposts, ecs.RequestKind(k))
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		rt.logs = append(rt.logs, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t, ok := transformOf(scene, b.Entity)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: t.X}, &tengo.Float{Value: t.Y}}}, nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if scene == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okx := tengo.ToFloat64(args[0])
		y, oky := tengo.ToFloat64(args[1])
		if !okx || !oky {
			return tengo.FalseValue, nil
		}
		t, ok := ecs.Write(scene, b.Entity, gfx.TransformComponent)
		if !ok {
			return tengo.FalseValue, nil
		}
		t.X, t.Y = x, y
		return tengo.TrueValue, nil
	}}

	values["set_rotation"] = &tengo.UserFunction{Name: "set_rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if scene == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		r, ok := tengo.ToFloat64(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		t, ok := ecs.Write(scene, b.Entity, gfx.TransformComponent)
		if !ok {
			return tengo.FalseValue, nil
		}
		t.Rotation = r
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func transformOf(s *ecs.Scene, e ecs.Entity) (gfx.Transform, bool) {
	if s == nil {
		return gfx.Transform{}, false
	}
	return ecs.Get(s, e, gfx.TransformComponent)
}

// TickSystem posts a Tick request to every behavior in a scene each frame.
// The ticks are applied when the engine drains its queue.
type TickSystem struct {
	handle slotmap.Handle
}

func NewTickSystem(scene slotmap.Handle) *TickSystem {
	return &TickSystem{handle: scene}
}

func (t *TickSystem) Update(en *ecs.Engine) error {
	s, ok := en.Scene(t.handle)
	if !ok {
		return nil
	}
	for _, e := range s.Filter().By(BehaviorComponent).Fetch() {
		en.Post(ecs.Request{Target: ecs.EntityTarget(t.handle, e, BehaviorComponent), Kind: Tick})
	}
	return nil
}
