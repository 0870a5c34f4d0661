package prefabs

import (
	"image/color"
	"io/fs"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/gfx"
	"github.com/milk9111/slotengine/physics"
	"github.com/milk9111/slotengine/resource"
	"github.com/milk9111/slotengine/script"
)

func TestLoadSceneSpec(t *testing.T) {
	spec, err := LoadSceneSpec("demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "demo", spec.Name)
	require.NotEmpty(t, spec.Materials)
	assert.Equal(t, color.RGBA{R: 0xe0, G: 0x60, B: 0x3a, A: 0xff}, spec.Materials[0].Color.RGBA)
	assert.Equal(t, [2]int{16, 16}, spec.Materials[0].Size)

	ff, ok := spec.Template("firefly")
	require.True(t, ok)
	assert.Equal(t, "orbit.tengo", ff.Script)
	assert.Nil(t, ff.Body)
}

func TestYAMLColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{`"#102030"`, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, false},
		{`"#10203040"`, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, false},
		{`"#1020"`, color.RGBA{}, true},
		{`"#zz2030"`, color.RGBA{}, true},
		{`[1, 2]`, color.RGBA{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tc.in), &c)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.RGBA)
		})
	}
}

func TestCleanScriptPath(t *testing.T) {
	assert.Equal(t, "scripts/orbit.tengo", cleanScriptPath("orbit.tengo"))
	assert.Equal(t, "scripts/orbit.tengo", cleanScriptPath("prefabs/scripts/orbit.tengo"))
	assert.Equal(t, "", cleanScriptPath(""))
}

func newLibrary(t *testing.T) (*Library, *resource.Manager[gfx.Material], *resource.Manager[gfx.Mesh]) {
	t.Helper()
	spec, err := LoadSceneSpec("demo.yaml")
	require.NoError(t, err)
	materials := resource.NewManager[gfx.Material]("material")
	meshes := resource.NewManager[gfx.Mesh]("mesh")
	lib, err := NewLibrary(spec, materials, meshes, nil)
	require.NoError(t, err)
	return lib, materials, meshes
}

func TestLibrarySpawn(t *testing.T) {
	lib, materials, meshes := newLibrary(t)
	assert.Equal(t, 4, materials.Len())
	assert.Equal(t, 4, meshes.Len())

	en := ecs.NewEngine()
	sh, s := en.NewScene()
	require.NoError(t, RegisterKinds(s))

	crate, err := lib.Spawn(s, sh, "crate", 10, 20)
	require.NoError(t, err)
	tr, ok := ecs.Get(s, crate, gfx.TransformComponent)
	require.True(t, ok)
	assert.Equal(t, 10.0, tr.X)
	sp, ok := ecs.Get(s, crate, gfx.SpriteComponent)
	require.True(t, ok)
	ember, _ := materials.Lookup("ember")
	assert.Equal(t, ember, sp.Material)
	assert.Equal(t, uint32(2), sp.Order)
	assert.True(t, ecs.Has(s, crate, physics.BodyComponent))
	assert.False(t, ecs.Has(s, crate, script.BehaviorComponent))

	firefly, err := lib.Spawn(s, sh, "firefly", 50, 50)
	require.NoError(t, err)
	assert.True(t, ecs.Has(s, firefly, script.BehaviorComponent))

	en.Post(ecs.Request{Target: ecs.EntityTarget(sh, firefly, script.BehaviorComponent), Kind: script.Tick})
	require.NoError(t, en.DrainDeferred())
	moved, _ := ecs.Get(s, firefly, gfx.TransformComponent)
	assert.NotEqual(t, 50.0, moved.X)
}

func TestLibrarySpawnErrors(t *testing.T) {
	lib, _, _ := newLibrary(t)
	en := ecs.NewEngine()
	sh, s := en.NewScene()
	require.NoError(t, RegisterKinds(s))

	_, err := lib.Spawn(s, sh, "dragon", 0, 0)
	assert.True(t, eris.Is(err, ErrUnknownTemplate))
	assert.Zero(t, s.Len())
}

func TestNewLibraryRejectsDuplicates(t *testing.T) {
	spec := &SceneSpec{Materials: []MaterialSpec{{Name: "a"}, {Name: "a"}}}
	_, err := NewLibrary(spec, resource.NewManager[gfx.Material]("material"), resource.NewManager[gfx.Mesh]("mesh"), nil)
	assert.True(t, eris.Is(err, resource.ErrDuplicateName))
}

func TestLoadSceneSpecMissingFile(t *testing.T) {
	_, err := LoadSceneSpec("missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefabs: load missing.yaml")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
