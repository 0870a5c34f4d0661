package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/config"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/gfx"
	"github.com/milk9111/slotengine/physics"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/resource"
	"github.com/milk9111/slotengine/script"
	"github.com/milk9111/slotengine/slotmap"
)

const (
	gravity   = 600
	minZoom   = 0.25
	maxZoom   = 4
	panSpeed  = 6
	cullDepth = 400
)

var (
	spawnTemplates   = []string{"crate", "sprout", "firefly"}
	fallingTemplates = []string{"crate", "sprout"}
)

type Game struct {
	cfg config.Config
	log zerolog.Logger

	engine    *ecs.Engine
	sceneH    slotmap.Handle
	scene     *ecs.Scene
	library   *prefabs.Library
	materials *resource.Manager[gfx.Material]
	meshes    *resource.Manager[gfx.Mesh]
	physics   *physics.System
	renderer  *gfx.Renderer
	spawnerH  slotmap.Handle

	camera     gfx.Camera
	zoomTarget float64
	paused     bool
	ui         *ebitenui.UI
	watcher    *config.Watcher
	lastErr    error

	refreshStats func()
}

func NewGame(cfg config.Config, log zerolog.Logger) (*Game, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	en := ecs.NewEngine(
		ecs.WithLogger(common.Component(log, "ecs")),
		ecs.WithGlobalVersionBits(cfg.Arena.VersionBits),
		ecs.WithSceneOptions(
			ecs.WithEntityVersionBits(cfg.Scene.EntityVersionBits),
			ecs.WithInitialCapacity(cfg.Scene.InitialCapacity),
		),
	)
	sh, s := en.NewScene()
	if err := prefabs.RegisterKinds(s); err != nil {
		return nil, err
	}

	resLog := common.Component(log, "resource")
	materials := resource.NewManager[gfx.Material]("material", resource.WithVersionBits(cfg.Arena.VersionBits), resource.WithLogger(resLog))
	meshes := resource.NewManager[gfx.Mesh]("mesh", resource.WithVersionBits(cfg.Arena.VersionBits), resource.WithLogger(resLog))

	spec, err := prefabs.LoadSceneSpec("demo.yaml")
	if err != nil {
		return nil, err
	}
	if cfg.Demo.Script != "" {
		for i := range spec.Templates {
			if spec.Templates[i].Script != "" {
				spec.Templates[i].Script = cfg.Demo.Script
			}
		}
	}
	lib, err := prefabs.NewLibrary(spec, materials, meshes, gfx.NewSolidTexture)
	if err != nil {
		return nil, err
	}

	phys := physics.NewSystem(physics.NewWorld(gravity, 1.0/60.0), s)
	en.AddSystem(phys)
	en.AddSystem(script.NewTickSystem(sh))

	g := &Game{
		cfg:        cfg,
		log:        log,
		engine:     en,
		sceneH:     sh,
		scene:      s,
		library:    lib,
		materials:  materials,
		meshes:     meshes,
		physics:    phys,
		renderer:   gfx.NewRenderer(layout, materials, meshes, common.Component(log, "render")),
		camera:     gfx.Camera{Zoom: 1},
		zoomTarget: 1,
	}
	g.spawnerH = en.AddGlobal(&spawner{game: g})
	g.ui = NewPauseUI(g)

	if err := g.populate(); err != nil {
		return nil, err
	}
	log.Info().Int("entities", s.Len()).Stringer("layout", layout).Msg("demo scene ready")
	return g, nil
}

func (g *Game) populate() error {
	w, h := float64(g.cfg.Window.Width), float64(g.cfg.Window.Height)
	for x := 32.0; x < w; x += 64 {
		if _, err := g.library.Spawn(g.scene, g.sceneH, "floor", x, h-16); err != nil {
			return err
		}
	}

	cols := max(int(w/48), 1)
	for i := 0; i < g.cfg.Demo.Sprites; i++ {
		name := spawnTemplates[i%len(spawnTemplates)]
		x := 24 + float64(i%cols)*48
		y := 24 + float64(i/cols)*40
		if _, err := g.library.Spawn(g.scene, g.sceneH, name, x, y); err != nil {
			return eris.Wrapf(err, "populate sprite %d", i)
		}
	}
	return nil
}

// Watch reloads the log level and spawn burst size when path changes.
func (g *Game) Watch(path string) error {
	w, err := config.Watch(path, common.Component(g.log, "config"))
	if err != nil {
		return err
	}
	g.watcher = w
	return nil
}

func (g *Game) applyConfig() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg, ok := <-g.watcher.Updates:
		if !ok {
			g.watcher = nil
			return
		}
		if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
			zerolog.SetGlobalLevel(level)
			g.log.Info().Str("level", cfg.Log.Level).Msg("config reloaded")
		}
		g.cfg.Log = cfg.Log
		g.cfg.Demo.Sprites = cfg.Demo.Sprites
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.log.Warn().Err(err).Msg("config reload failed")
		}
	default:
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn().Err(err).Msg("close config watcher")
		}
	}
}

func (g *Game) Update() error {
	g.applyConfig()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.refreshStats()
		g.ui.Update()
		return nil
	}

	g.handleInput()

	if err := g.engine.Step(); err != nil {
		g.lastErr = err
		g.log.Warn().Err(err).Uint64("frame", g.engine.Frame()).Msg("step failed")
	}
	g.cull()
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		ecs.Each(g.scene, script.BehaviorComponent, func(e ecs.Entity, _ *script.Behavior) {
			g.engine.Post(ecs.Request{Target: ecs.EntityTarget(g.sceneH, e, script.BehaviorComponent), Kind: script.Poke})
		})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.engine.Post(ecs.Request{Target: ecs.GlobalTarget(g.spawnerH), Kind: spawnBurst})
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camera.X -= panSpeed / g.camera.Zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camera.X += panSpeed / g.camera.Zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camera.Y -= panSpeed / g.camera.Zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camera.Y += panSpeed / g.camera.Zoom
	}
	w := float64(g.cfg.Window.Width)
	g.camera.X = common.Clamp(g.camera.X, -w, w)

	_, wheel := ebiten.Wheel()
	g.zoomTarget = common.Clamp(g.zoomTarget+wheel*0.1, minZoom, maxZoom)
	g.camera.Zoom = common.Lerp(g.camera.Zoom, g.zoomTarget, 0.2)
}

// cull despawns bodies that fell off the bottom of the world.
func (g *Game) cull() {
	limit := float64(g.cfg.Window.Height) + cullDepth
	var fallen []ecs.Entity
	ecs.Each2(g.scene, physics.BodyComponent, gfx.TransformComponent, func(e ecs.Entity, _ *physics.Body, t *gfx.Transform) {
		if t.Y > limit {
			fallen = append(fallen, e)
		}
	})
	for _, e := range fallen {
		g.physics.Despawn(e)
	}
	if len(fallen) > 0 {
		g.log.Debug().Int("count", len(fallen)).Msg("culled fallen bodies")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.scene, screen, g.camera)

	st := g.renderer.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  entities: %d  items: %d  batches: %d  stale: %d",
		ebiten.ActualFPS(), g.scene.Len(), st.Items, st.Batches, st.Stale))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.cfg.Window.Width), float64(g.cfg.Window.Height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

const spawnBurst ecs.RequestKind = 1

// spawner is a global update hook that drops a handful of random templates
// from the top of the screen.
type spawner struct {
	game  *Game
	count int
}

func (sp *spawner) HandleRequest(_ *ecs.Engine, kind ecs.RequestKind) error {
	if kind != spawnBurst {
		return nil
	}
	g := sp.game
	n := max(g.cfg.Demo.Sprites/8, 1)
	for i := 0; i < n; i++ {
		name := fallingTemplates[rand.IntN(len(fallingTemplates))]
		x := common.Wrap(float64(sp.count)*97+rand.Float64()*16, float64(g.cfg.Window.Width))
		if _, err := g.library.Spawn(g.scene, g.sceneH, name, x, -16); err != nil {
			return err
		}
		sp.count++
	}
	g.log.Debug().Int("spawned", sp.count).Msg("spawn burst")
	return nil
}
