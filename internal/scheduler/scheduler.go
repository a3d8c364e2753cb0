// Package scheduler runs delayed callbacks. The capture session uses it for
// the auto-capture tick so tests can drive time by hand.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Token cancels a scheduled callback.
type Token interface {
	// Cancel prevents the callback from running. It reports false if the
	// callback already ran or was already cancelled.
	Cancel() bool
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Token
}

// Realtime schedules on the wall clock via time.AfterFunc. Callbacks run on
// their own goroutine.
type Realtime struct{}

// Schedule implements Scheduler.
func (Realtime) Schedule(delay time.Duration, fn func()) Token {
	return realtimeToken{time.AfterFunc(delay, fn)}
}

type realtimeToken struct {
	t *time.Timer
}

func (r realtimeToken) Cancel() bool {
	return r.t.Stop()
}

// Manual is a Scheduler whose clock only moves when Advance is called.
// Callbacks run synchronously inside Advance, in due-time order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m         *Manual
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
	done      bool
}

func (t *manualTask) Cancel() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.cancelled || t.done {
		return false
	}
	t.cancelled = true
	return true
}

// NewManual returns a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(delay time.Duration, fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	m.seq++
	t := &manualTask{m: m, at: m.now + delay, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of callbacks waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled && !t.done {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every callback that comes
// due, including ones scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest live task due at or before target and moves the
// clock to its due time.
func (m *Manual) nextDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled && !t.done {
			live = append(live, t)
		}
	}
	m.tasks = live

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at != m.tasks[j].at {
			return m.tasks[i].at < m.tasks[j].at
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})

	if len(m.tasks) == 0 || m.tasks[0].at > target {
		return nil
	}
	t := m.tasks[0]
	t.done = true
	m.tasks = m.tasks[1:]
	if t.at > m.now {
		m.now = t.at
	}
	return t
}
