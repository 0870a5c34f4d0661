package ecs

import (
	"fmt"
	"sync"

	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/slotmap"
)

// RequestKind tells an update hook what was asked of it. Its meaning is
// defined by the component that posted it.
type RequestKind uint16

// Target identifies the value a deferred request mutates: either a component
// of an entity in a scene, or a global value held by the engine.
type Target struct {
	Scene     slotmap.Handle
	Entity    Entity
	Component component.ID
	Global    slotmap.Handle
}

// EntityTarget addresses the kind value attached to e in scene.
func EntityTarget(scene slotmap.Handle, e Entity, kind component.Kind) Target {
	return Target{Scene: scene, Entity: e, Component: kind.ID()}
}

// GlobalTarget addresses a global value.
func GlobalTarget(h slotmap.Handle) Target {
	return Target{Global: h}
}

func (t Target) IsGlobal() bool {
	return t.Component == 0
}

func (t Target) String() string {
	if t.IsGlobal() {
		return "global " + t.Global.String()
	}
	return fmt.Sprintf("scene %s entity %s kind %d", t.Scene, t.Entity, t.Component)
}

// Request is one pending mutation.
type Request struct {
	Target Target
	Kind   RequestKind
}

// Updater is implemented by values that accept deferred requests. The value
// has been moved out of its storage for the duration of the call, so the hook
// may use the whole engine freely.
type Updater interface {
	HandleRequest(en *Engine, kind RequestKind) error
}

// Queue is a FIFO of deferred requests. Post is safe from any goroutine;
// draining is done by the engine once per frame.
type Queue struct {
	mu      sync.Mutex
	pending []Request
}

func NewQueue() *Queue {
	return &Queue{}
}

// Post appends r to the queue.
func (q *Queue) Post(r Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, r)
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// swap takes every pending request and leaves an empty queue behind. Posts
// made after the swap belong to the next drain.
func (q *Queue) swap() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}
