package schedule

import (
	"sync"
	"time"
)

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) *Task
	Now() time.Time
}

// Task is a handle to a scheduled callback.
type Task struct {
	stop func() bool
}

// Cancel prevents the callback from running. It reports false when the task
// already fired or was cancelled before.
func (t *Task) Cancel() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

// Real schedules on the runtime timer.
type Real struct{}

func NewReal() Real { return Real{} }

func (Real) Schedule(delay time.Duration, fn func()) *Task {
	timer := time.AfterFunc(delay, fn)
	return &Task{stop: timer.Stop}
}

func (Real) Now() time.Time { return time.Now() }

// Manual is a virtual clock for tests. Callbacks only run inside Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending map[uint64]*entry
}

type entry struct {
	at  time.Time
	seq uint64
	fn  func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start, pending: make(map[uint64]*entry)}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Schedule(delay time.Duration, fn func()) *Task {
	if delay < 0 {
		delay = 0
	}
	m.mu.Lock()
	m.seq++
	e := &entry{at: m.now.Add(delay), seq: m.seq, fn: fn}
	m.pending[e.seq] = e
	m.mu.Unlock()

	return &Task{stop: func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.pending[e.seq]; !ok {
			return false
		}
		delete(m.pending, e.seq)
		return true
	}}
}

// Pending returns the number of scheduled, not yet fired tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d and runs every task that comes due,
// earliest deadline first and in scheduling order on ties. Tasks scheduled by
// a callback run in the same call when they fall inside the window.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	fired := 0
	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return fired
		}
		delete(m.pending, next.seq)
		m.now = next.at
		m.mu.Unlock()

		next.fn()
		fired++
	}
}

func (m *Manual) nextDue(target time.Time) *entry {
	var best *entry
	for _, e := range m.pending {
		if e.at.After(target) {
			continue
		}
		if best == nil || e.at.Before(best.at) || (e.at.Equal(best.at) && e.seq < best.seq) {
			best = e
		}
	}
	return best
}
