package service

import (
	"sync"
	"time"
)

// timerHandle cancels one scheduled callback. Cancel is idempotent:
// cancelling twice, or cancelling after the timer fired, is a no-op.
type timerHandle struct {
	once sync.Once
	stop func()
}

func (h *timerHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(h.stop)
}

// timerSet is the arena of active timers owned by one room. Every timer a
// room or its game schedules is tracked here so CancelAll can sweep them
// on game end or room destruction; a dangling callback mutating a
// destroyed room's state would be a correctness bug, not a leak.
type timerSet struct {
	mu     sync.Mutex
	active map[*timerHandle]struct{}
	closed bool
}

func newTimerSet() *timerSet {
	return &timerSet{active: make(map[*timerHandle]struct{})}
}

// After schedules fn once after d.
func (ts *timerSet) After(d time.Duration, fn func()) *timerHandle {
	h := &timerHandle{}
	t := time.AfterFunc(d, func() {
		ts.remove(h)
		fn()
	})
	h.stop = func() {
		t.Stop()
		ts.remove(h)
	}
	if !ts.add(h) {
		h.Cancel()
	}
	return h
}

// Every schedules fn at each tick of d until cancelled.
func (ts *timerSet) Every(d time.Duration, fn func()) *timerHandle {
	h := &timerHandle{}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	h.stop = func() {
		ticker.Stop()
		close(done)
		ts.remove(h)
	}
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	if !ts.add(h) {
		h.Cancel()
	}
	return h
}

// CancelAll cancels every outstanding timer and rejects future additions.
func (ts *timerSet) CancelAll() {
	ts.mu.Lock()
	ts.closed = true
	handles := make([]*timerHandle, 0, len(ts.active))
	for h := range ts.active {
		handles = append(handles, h)
	}
	ts.active = make(map[*timerHandle]struct{})
	ts.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

func (ts *timerSet) add(h *timerHandle) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.closed {
		return false
	}
	ts.active[h] = struct{}{}
	return true
}

func (ts *timerSet) remove(h *timerHandle) {
	ts.mu.Lock()
	delete(ts.active, h)
	ts.mu.Unlock()
}
