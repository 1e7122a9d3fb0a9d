package game

import (
	"sync"
	"time"
)

const DefaultTickInterval = time.Second

// Timer accumulates elapsed game time one interval per tick and reports the
// running total to onTick. Ticking only happens while started and not
// paused. onTick runs on the timer goroutine and must not call back into
// Start, Pause, Resume or Stop.
type Timer struct {
	interval time.Duration
	onTick   func(elapsedMs int64)

	mu      sync.Mutex
	running bool
	paused  bool
	elapsed time.Duration
	stop    chan struct{}
	done    chan struct{}
}

func NewTimer(interval time.Duration, onTick func(elapsedMs int64)) *Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if onTick == nil {
		onTick = func(int64) {}
	}
	return &Timer{interval: interval, onTick: onTick}
}

// Start begins ticking from the current elapsed time. On a running timer it
// only clears a pause.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running && !t.paused {
		return
	}
	t.running = true
	t.paused = false
	t.startLoopLocked()
}

func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.running || t.paused {
		t.mu.Unlock()
		return
	}
	t.paused = true
	stop, done := t.detachLoopLocked()
	t.mu.Unlock()

	t.joinLoop(stop, done)
}

func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || !t.paused {
		return
	}
	t.paused = false
	t.startLoopLocked()
}

// Stop halts ticking and resets the elapsed time. When Stop returns no
// further onTick call will happen for the halted run.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.running = false
	t.paused = false
	t.elapsed = 0
	stop, done := t.detachLoopLocked()
	t.mu.Unlock()

	t.joinLoop(stop, done)
}

// Time returns the elapsed time in milliseconds.
func (t *Timer) Time() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed.Milliseconds()
}

func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Timer) startLoopLocked() {
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stop, t.done)
}

func (t *Timer) detachLoopLocked() (chan struct{}, chan struct{}) {
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	return stop, done
}

func (t *Timer) joinLoop(stop, done chan struct{}) {
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (t *Timer) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			elapsed, ok := t.tick(stop)
			if !ok {
				return
			}
			t.onTick(elapsed)

		case <-stop:
			return
		}
	}
}

func (t *Timer) tick(stop chan struct{}) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A detached loop may still see one ticker fire before it observes stop.
	if t.stop != stop {
		return 0, false
	}
	t.elapsed += t.interval
	return t.elapsed.Milliseconds(), true
}
