// Package schedule provides cancellable deferred task execution.
//
// A Scheduler runs a callback after a delay and returns a handle that can
// cancel it before it fires. Outstanding handles are tracked so a component
// shutting down can cancel everything it scheduled in one call. The Set
// implementation is backed by real timers; Manual is a deterministic
// implementation driven by an explicitly advanced clock, intended for tests.
package schedule

import (
	"sync"
	"time"
)

// Handle identifies a scheduled task within its scheduler.
type Handle uint64

// Scheduler schedules callbacks to run after a delay.
type Scheduler interface {
	// After schedules fn to run once the delay elapses and returns a
	// handle for cancellation. A non-positive delay still defers fn;
	// it never runs synchronously inside After.
	After(delay time.Duration, fn func()) Handle

	// Cancel stops a pending task. It returns false if the handle is
	// unknown or the task already fired.
	Cancel(handle Handle) bool

	// CancelAll stops every pending task and returns how many were
	// cancelled.
	CancelAll() int

	// Pending returns the number of tasks that have not yet fired.
	Pending() int
}

// Clock supplies the current time. Components take a Clock so tests can
// substitute a manual one.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Set is a Scheduler backed by time.AfterFunc timers.
type Set struct {
	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

// NewSet creates an empty timer set.
func NewSet() *Set {
	return &Set{
		timers: make(map[Handle]*time.Timer),
	}
}

// After schedules fn on a real timer.
func (s *Set) After(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	handle := s.next
	s.timers[handle] = time.AfterFunc(delay, func() {
		// A timer can expire concurrently with Cancel; the map entry
		// decides which side wins.
		s.mu.Lock()
		_, pending := s.timers[handle]
		if pending {
			delete(s.timers, handle)
		}
		s.mu.Unlock()

		if pending {
			fn()
		}
	})
	return handle
}

// Cancel stops a pending timer.
func (s *Set) Cancel(handle Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[handle]
	if !ok {
		return false
	}
	delete(s.timers, handle)
	timer.Stop()
	return true
}

// CancelAll stops every pending timer.
func (s *Set) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.timers)
	for handle, timer := range s.timers {
		timer.Stop()
		delete(s.timers, handle)
	}
	return n
}

// Pending returns the number of timers that have not fired.
func (s *Set) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
