package paginate

import (
	"sync"
	"time"
)

// State is the scheduler's position in its Idle → Pending → Measuring cycle.
type State int

const (
	Idle State = iota
	Pending
	Measuring
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Measuring:
		return "measuring"
	}
	return "unknown"
}

// Scheduler coalesces bursts of triggers into one delayed run. Each trigger
// while Pending restarts the delay, so only the last trigger of a burst
// fires. Triggers while a run is in flight are dropped. Runs never overlap.
type Scheduler struct {
	delay time.Duration
	run   func()

	mu      sync.Mutex
	state   State
	timer   *time.Timer
	gen     uint64 // invalidates timers that fire after being replaced
	done    chan struct{}
	stopped bool
}

func NewScheduler(delay time.Duration, run func()) *Scheduler {
	return &Scheduler{delay: delay, run: run}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Trigger arms or rearms the delay timer. It reports false when the trigger
// was dropped because a run is in flight or the scheduler is stopped.
func (s *Scheduler) Trigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.state == Measuring {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.state = Pending
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	return true
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen || s.state != Pending {
		s.mu.Unlock()
		return
	}
	done := s.beginLocked()
	s.mu.Unlock()
	s.execute(done)
}

// Flush cancels any pending timer and runs immediately. If a run is already
// in flight, Flush waits for it and reports false.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	if s.state == Measuring {
		done := s.done
		s.mu.Unlock()
		<-done
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	done := s.beginLocked()
	s.mu.Unlock()
	s.execute(done)
	return true
}

// Stop cancels a pending run and waits for an in-flight one to finish.
// Later triggers are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	done := s.done
	if s.state == Pending {
		s.state = Idle
	}
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) beginLocked() chan struct{} {
	s.state = Measuring
	s.timer = nil
	s.done = make(chan struct{})
	return s.done
}

// execute runs the pass and returns to Idle whatever happens inside it.
func (s *Scheduler) execute(done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.state = Idle
		s.done = nil
		s.mu.Unlock()
		close(done)
	}()
	s.run()
}
