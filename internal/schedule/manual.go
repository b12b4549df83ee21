package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler and Clock driven by an explicitly advanced clock.
// Tasks fire during Advance, on the calling goroutine, in order of due
// time (insertion order breaks ties). It exists for deterministic tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	next    Handle
	seq     uint64
	entries []manualEntry
}

type manualEntry struct {
	handle Handle
	due    time.Time
	seq    uint64
	fn     func()
}

// NewManual creates a manual scheduler starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After registers fn to fire once the clock has advanced past the delay.
func (m *Manual) After(delay time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.seq++
	m.entries = append(m.entries, manualEntry{
		handle: m.next,
		due:    m.now.Add(delay),
		seq:    m.seq,
		fn:     fn,
	})
	return m.next
}

// Cancel removes a pending task.
func (m *Manual) Cancel(handle Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.handle == handle {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll removes every pending task.
func (m *Manual) CancelAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.entries)
	m.entries = nil
	return n
}

// Pending returns the number of tasks that have not fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Advance moves the clock forward and fires every task whose due time has
// been reached, in due-time order. Tasks scheduled by a firing callback
// also fire if their due time falls within the advanced window. Returns
// the number of tasks fired.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()

	fired := 0
	for {
		fn, ok := m.popDue()
		if !ok {
			return fired
		}
		fn()
		fired++
	}
}

// popDue removes and returns the earliest-due task at or before now.
func (m *Manual) popDue() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].due.Equal(m.entries[j].due) {
			return m.entries[i].seq < m.entries[j].seq
		}
		return m.entries[i].due.Before(m.entries[j].due)
	})

	if len(m.entries) == 0 || m.entries[0].due.After(m.now) {
		return nil, false
	}
	fn := m.entries[0].fn
	m.entries = m.entries[1:]
	return fn, true
}
