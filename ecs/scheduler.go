package ecs

import "errors"

// System is one step of a frame. Systems run in the order they were added
// and never preempt each other.
type System interface {
	Update(en *Engine) error
}

// SystemFunc adapts a function to System.
type SystemFunc func(en *Engine) error

func (f SystemFunc) Update(en *Engine) error {
	return f(en)
}

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs every system once. A failing system does not stop the frame;
// all errors are returned together.
func (s *Scheduler) Update(en *Engine) error {
	var errs []error
	for _, system := range s.systems {
		if err := system.Update(en); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
