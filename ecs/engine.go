package ecs

import (
	"errors"
	"iter"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/slotengine/slotmap"
)

// ErrNoUpdateHook is returned when a deferred request targets a value that
// does not implement Updater.
var ErrNoUpdateHook = errors.New("ecs: target has no update hook")

// ErrTargetBorrowed is returned when a deferred request targets a value that
// is borrowed or already running its hook, as happens when a drain is started
// from inside Borrow, Each, or another hook.
var ErrTargetBorrowed = errors.New("ecs: target is borrowed")

type globalEntry struct {
	value  any
	leased bool
}

// Engine is the context systems and update hooks run against. It owns the
// scenes, global values, the deferred queue, and the system schedule.
type Engine struct {
	scenes    *slotmap.Arena[*Scene]
	globals   *slotmap.Arena[globalEntry]
	queue     *Queue
	scheduler *Scheduler
	sceneOpts []SceneOption
	log       zerolog.Logger
	frame     uint64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. Scenes created afterwards share it.
func WithLogger(log zerolog.Logger) EngineOption {
	return func(en *Engine) {
		en.log = log
	}
}

// WithSceneOptions applies opts to every scene the engine creates.
func WithSceneOptions(opts ...SceneOption) EngineOption {
	return func(en *Engine) {
		en.sceneOpts = append(en.sceneOpts, opts...)
	}
}

// WithGlobalVersionBits sets the handle version width for global values.
func WithGlobalVersionBits(bits uint) EngineOption {
	return func(en *Engine) {
		en.globals = slotmap.New[globalEntry](slotmap.WithVersionBits(bits))
	}
}

// WithQueue makes the engine drain q instead of a private queue.
func WithQueue(q *Queue) EngineOption {
	return func(en *Engine) {
		en.queue = q
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	en := &Engine{
		scenes:    slotmap.New[*Scene](),
		globals:   slotmap.New[globalEntry](),
		queue:     NewQueue(),
		scheduler: NewScheduler(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(en)
	}
	return en
}

func (en *Engine) Logger() *zerolog.Logger {
	return &en.log
}

func (en *Engine) Queue() *Queue {
	return en.queue
}

func (en *Engine) Scheduler() *Scheduler {
	return en.scheduler
}

// Frame returns the number of completed steps.
func (en *Engine) Frame() uint64 {
	return en.frame
}

// NewScene creates a scene owned by the engine.
func (en *Engine) NewScene() (slotmap.Handle, *Scene) {
	opts := append([]SceneOption{WithSceneLogger(en.log)}, en.sceneOpts...)
	s := NewScene(opts...)
	return en.scenes.Insert(s), s
}

// Scene resolves a scene handle.
func (en *Engine) Scene(h slotmap.Handle) (*Scene, bool) {
	return en.scenes.Get(h)
}

// DropScene releases a scene. Requests still targeting it are discarded.
func (en *Engine) DropScene(h slotmap.Handle) bool {
	_, ok := en.scenes.Remove(h)
	return ok
}

// Scenes yields every live scene in creation-slot order.
func (en *Engine) Scenes() iter.Seq2[slotmap.Handle, *Scene] {
	return func(yield func(slotmap.Handle, *Scene) bool) {
		for h, s := range en.scenes.All() {
			if !yield(h, *s) {
				return
			}
		}
	}
}

// AddGlobal stores a value that is not tied to any entity.
func (en *Engine) AddGlobal(v any) slotmap.Handle {
	return en.globals.Insert(globalEntry{value: v})
}

// Global returns the global value for h. A value currently leased to its
// update hook reads as absent.
func (en *Engine) Global(h slotmap.Handle) (any, bool) {
	g, ok := en.globals.GetPtr(h)
	if !ok || g.leased {
		return nil, false
	}
	return g.value, true
}

func (en *Engine) RemoveGlobal(h slotmap.Handle) bool {
	_, ok := en.globals.Remove(h)
	return ok
}

// Post queues r for the next drain.
func (en *Engine) Post(r Request) {
	en.queue.Post(r)
}

// AddSystem appends s to the schedule.
func (en *Engine) AddSystem(s System) {
	en.scheduler.Add(s)
}

// Step runs one frame: every system in order, then the deferred drain.
func (en *Engine) Step() error {
	err := errors.Join(en.scheduler.Update(en), en.DrainDeferred())
	en.frame++
	return err
}

// DrainDeferred applies every request posted before the call, in FIFO order.
// Requests whose target vanished are dropped. Hook failures are collected and
// returned; they are never retried.
func (en *Engine) DrainDeferred() error {
	reqs := en.queue.swap()
	if len(reqs) == 0 {
		return nil
	}

	var errs []error
	for _, r := range reqs {
		if err := en.apply(r); err != nil {
			en.log.Warn().Err(err).Stringer("target", r.Target).Uint16("kind", uint16(r.Kind)).Msg("deferred request failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (en *Engine) apply(r Request) error {
	if r.Target.IsGlobal() {
		return en.applyGlobal(r)
	}

	s, ok := en.scenes.Get(r.Target.Scene)
	if !ok {
		en.log.Debug().Stringer("target", r.Target).Msg("deferred request dropped: scene gone")
		return nil
	}
	v, state := s.lease(r.Target.Entity, r.Target.Component)
	switch state {
	case leaseGone:
		en.log.Debug().Stringer("target", r.Target).Msg("deferred request dropped: target gone")
		return nil
	case leaseBusy:
		return eris.Wrapf(ErrTargetBorrowed, "request %d for %s", r.Kind, r.Target)
	}
	defer s.restore(r.Target.Entity, r.Target.Component, v)

	u, ok := v.(Updater)
	if !ok {
		return eris.Wrapf(ErrNoUpdateHook, "request %d for %s", r.Kind, r.Target)
	}
	if err := u.HandleRequest(en, r.Kind); err != nil {
		return eris.Wrapf(err, "request %d for %s", r.Kind, r.Target)
	}
	return nil
}

func (en *Engine) applyGlobal(r Request) error {
	g, ok := en.globals.GetPtr(r.Target.Global)
	if !ok {
		en.log.Debug().Stringer("target", r.Target).Msg("deferred request dropped: global gone")
		return nil
	}
	if g.leased {
		return eris.Wrapf(ErrTargetBorrowed, "request %d for %s", r.Kind, r.Target)
	}
	g.leased = true
	v := g.value
	defer func() {
		// the global may have been removed by its own hook
		if g, ok := en.globals.GetPtr(r.Target.Global); ok {
			g.leased = false
		}
	}()

	u, ok := v.(Updater)
	if !ok {
		return eris.Wrapf(ErrNoUpdateHook, "request %d for %s", r.Kind, r.Target)
	}
	if err := u.HandleRequest(en, r.Kind); err != nil {
		return eris.Wrapf(err, "request %d for %s", r.Kind, r.Target)
	}
	return nil
}

// DeferredSystem drains the engine queue as an ordinary scheduled system, for
// schedules that want the drain at a point other than the end of Step.
type DeferredSystem struct{}

func (DeferredSystem) Update(en *Engine) error {
	return en.DrainDeferred()
}
