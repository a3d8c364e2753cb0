package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_RunsDueCallbacksInOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.Schedule(3*time.Second, func() { order = append(order, "c") })
	m.Schedule(1*time.Second, func() { order = append(order, "a") })
	m.Schedule(1*time.Second, func() { order = append(order, "b") })
	m.Schedule(10*time.Second, func() { order = append(order, "late") })

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 5*time.Second, m.Now())
	assert.Equal(t, 1, m.Pending())
}

func TestManual_CallbackCanReschedule(t *testing.T) {
	m := NewManual()
	var ticks []time.Duration

	var tick func()
	tick = func() {
		ticks = append(ticks, m.Now())
		m.Schedule(10*time.Second, tick)
	}
	m.Schedule(10*time.Second, tick)

	m.Advance(35 * time.Second)
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}, ticks)
	assert.Equal(t, 1, m.Pending())
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual()
	ran := false

	tok := m.Schedule(time.Second, func() { ran = true })
	assert.True(t, tok.Cancel())
	assert.False(t, tok.Cancel())

	m.Advance(2 * time.Second)
	assert.False(t, ran)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_CancelAfterRun(t *testing.T) {
	m := NewManual()
	tok := m.Schedule(0, func() {})
	m.Advance(0)
	assert.False(t, tok.Cancel())
}

func TestRealtime_ScheduleAndCancel(t *testing.T) {
	var fired atomic.Int32
	done := make(chan struct{})

	Realtime{}.Schedule(time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
	require.Equal(t, int32(1), fired.Load())

	tok := Realtime{}.Schedule(time.Hour, func() { fired.Add(1) })
	assert.True(t, tok.Cancel())
}
