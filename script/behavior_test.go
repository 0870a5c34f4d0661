package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/gfx"
	"github.com/milk9111/slotengine/slotmap"
)

const counterSrc = `
handle := func(engine, state, kind, frame) {
	if is_undefined(state.count) {
		state.count = 0
	}
	state.count += 1
	state.last_kind = kind
	state.frame = frame
	if kind == 2 && state.count < 3 {
		engine.repost(2)
	}
	pos := engine.get_position()
	if !is_undefined(pos) {
		engine.set_position(pos[0] + 1.5, pos[1])
	}
	engine.log("handled", kind)
}
`

func setup(t *testing.T, src string) (*ecs.Engine, slotmap.Handle, *ecs.Scene, ecs.Entity) {
	t.Helper()
	en := ecs.NewEngine()
	sh, s := en.NewScene()
	require.NoError(t, ecs.Register(s, BehaviorComponent))
	require.NoError(t, ecs.Register(s, gfx.TransformComponent))

	p, err := Compile("counter", []byte(src))
	require.NoError(t, err)

	e := s.Spawn()
	require.NoError(t, ecs.Attach(s, e, gfx.TransformComponent, gfx.Transform{X: 1, Y: 2}))
	require.NoError(t, Attach(s, sh, e, p))
	return en, sh, s, e
}

func TestBehaviorKeepsStateAcrossRequests(t *testing.T) {
	en, sh, s, e := setup(t, counterSrc)
	target := ecs.EntityTarget(sh, e, BehaviorComponent)

	en.Post(ecs.Request{Target: target, Kind: Tick})
	en.Post(ecs.Request{Target: target, Kind: Tick})
	require.NoError(t, en.DrainDeferred())

	b, ok := ecs.Get(s, e, BehaviorComponent)
	require.True(t, ok)
	state := b.State()
	assert.Equal(t, 2, state["count"])
	assert.Equal(t, int(Tick), state["last_kind"])

	tr, _ := ecs.Get(s, e, gfx.TransformComponent)
	assert.Equal(t, 4.0, tr.X)
	assert.Equal(t, 2.0, tr.Y)
}

func TestRepostLandsInLaterDrains(t *testing.T) {
	en, sh, s, e := setup(t, counterSrc)
	en.Post(ecs.Request{Target: ecs.EntityTarget(sh, e, BehaviorComponent), Kind: Poke})

	tests := []struct {
		name        string
		wantCount   int
		wantPending int
	}{
		{"first", 1, 1},
		{"second", 2, 1},
		{"third_stops", 3, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, en.DrainDeferred())
			b, _ := ecs.Get(s, e, BehaviorComponent)
			assert.Equal(t, tc.wantCount, b.State()["count"])
			assert.Equal(t, tc.wantPending, en.Queue().Len())
		})
	}
}

func TestTickSystemThroughStep(t *testing.T) {
	en, sh, s, e := setup(t, counterSrc)
	en.AddSystem(NewTickSystem(sh))

	for i := 0; i < 3; i++ {
		require.NoError(t, en.Step())
	}

	b, _ := ecs.Get(s, e, BehaviorComponent)
	state := b.State()
	assert.Equal(t, 3, state["count"])
	assert.Equal(t, 2, state["frame"], "the third step runs while two frames are complete")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing_handle", `x := 1`},
		{"syntax", `handle := func(engine, state, kind, frame) {`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.name, []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "script: compile "+tc.name)
		})
	}
}

func TestRuntimeErrorSurfacesFromDrain(t *testing.T) {
	en, sh, s, e := setup(t, `
handle := func(engine, state, kind, frame) {
	x := [1, 2]
	return x[5].nope()
}
`)
	en.Post(ecs.Request{Target: ecs.EntityTarget(sh, e, BehaviorComponent), Kind: Tick})
	assert.Error(t, en.DrainDeferred())
	assert.True(t, ecs.Has(s, e, BehaviorComponent), "the behavior is restored after a failed run")
}

func TestBehaviorWithoutProgram(t *testing.T) {
	en := ecs.NewEngine()
	var b Behavior
	assert.ErrorIs(t, b.HandleRequest(en, Tick), ErrNoProgram)
	assert.Nil(t, b.State())
}
