package list

import (
	"sync"
	"time"
)

// refreshState is the coalescing state machine's position.
type refreshState int

const (
	refreshIdle refreshState = iota
	refreshScheduled
	refreshSuppressed
)

// refresher coalesces bursts of change signals into single recomputes.
// The first signal after an idle period fires on the leading edge so a
// single edit stays low-latency; further signals restart a trailing
// delay so a burst settles into one recompute. While suppressed, signals
// are captured as pending and flush the instant suppression lifts.
type refresher struct {
	mu       sync.Mutex
	state    refreshState
	delay    time.Duration
	timer    *time.Timer
	lastFire time.Time
	pending  bool
	suppress int
	fire     func()
}

func newRefresher(delay time.Duration, fire func()) *refresher {
	return &refresher{delay: delay, fire: fire}
}

// Request signals that inputs changed and a recompute is wanted.
func (r *refresher) Request() {
	r.mu.Lock()
	if r.suppress > 0 {
		r.pending = true
		r.state = refreshSuppressed
		r.mu.Unlock()
		return
	}
	switch r.state {
	case refreshScheduled:
		// Trailing edge restarts per signal.
		r.timer.Reset(r.delay)
		r.mu.Unlock()
	default:
		if time.Since(r.lastFire) >= r.delay {
			// Leading edge: first signal in an idle period.
			r.lastFire = time.Now()
			r.mu.Unlock()
			r.fire()
			return
		}
		r.state = refreshScheduled
		r.timer = time.AfterFunc(r.delay, r.onTimer)
		r.mu.Unlock()
	}
}

func (r *refresher) onTimer() {
	r.mu.Lock()
	if r.state != refreshScheduled {
		r.mu.Unlock()
		return
	}
	r.state = refreshIdle
	r.lastFire = time.Now()
	r.mu.Unlock()
	r.fire()
}

// Suppress captures subsequent requests as pending instead of scheduling
// them. Nested suppression is counted.
func (r *refresher) Suppress() {
	r.mu.Lock()
	r.suppress++
	if r.state == refreshScheduled {
		r.timer.Stop()
		r.pending = true
	}
	r.state = refreshSuppressed
	r.mu.Unlock()
}

// Release lifts one suppression; when the last lifts with a pending
// request captured, the refresh flushes immediately.
func (r *refresher) Release() {
	r.mu.Lock()
	if r.suppress > 0 {
		r.suppress--
	}
	if r.suppress > 0 {
		r.mu.Unlock()
		return
	}
	flush := r.pending
	r.pending = false
	r.state = refreshIdle
	if flush {
		r.lastFire = time.Now()
	}
	r.mu.Unlock()
	if flush {
		r.fire()
	}
}

// Stop cancels any scheduled fire.
func (r *refresher) Stop() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.state = refreshIdle
	r.pending = false
	r.mu.Unlock()
}

// State returns the current machine state, for tests.
func (r *refresher) State() refreshState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
