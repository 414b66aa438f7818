package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFires(t *testing.T) {
	ts := newTimerSet()
	var fired atomic.Int32
	ts.After(5*time.Millisecond, func() { fired.Add(1) })

	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, time.Millisecond)
}

func TestCancelIsIdempotent(t *testing.T) {
	ts := newTimerSet()
	var fired atomic.Int32
	h := ts.After(20*time.Millisecond, func() { fired.Add(1) })

	h.Cancel()
	h.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())

	// Cancelling after the fire is also a no-op.
	h2 := ts.After(time.Millisecond, func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, time.Millisecond)
	h2.Cancel()
	h2.Cancel()
}

func TestEveryTicksUntilCancelled(t *testing.T) {
	ts := newTimerSet()
	var ticks atomic.Int32
	h := ts.Every(5*time.Millisecond, func() { ticks.Add(1) })

	require.Eventually(t, func() bool { return ticks.Load() >= 3 },
		time.Second, time.Millisecond)
	h.Cancel()
	n := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), n+1) // at most one in-flight tick
}

func TestCancelAllSweepsAndCloses(t *testing.T) {
	ts := newTimerSet()
	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		ts.After(20*time.Millisecond, func() { fired.Add(1) })
	}
	ts.Every(5*time.Millisecond, func() { fired.Add(1) })

	ts.CancelAll()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())

	// A closed set refuses new timers.
	ts.After(time.Millisecond, func() { fired.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestFiredTimerLeavesSet(t *testing.T) {
	ts := newTimerSet()
	done := make(chan struct{})
	ts.After(time.Millisecond, func() { close(done) })
	<-done

	require.Eventually(t, func() bool {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		return len(ts.active) == 0
	}, time.Second, time.Millisecond)
}
