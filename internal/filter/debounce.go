package filter

import (
	"sync"
	"time"
)

// Gate coalesces a burst of edits into a single fire after a quiet period.
// Each Touch replaces the pending fire: only a timer that survives the full
// delay without an intervening Touch invokes the callback, so downstream work
// runs at most once per quiet period rather than once per edit.
//
// Cancellation is by generation counter: a superseded or stopped timer finds
// its generation stale and returns without observable effect, even if the
// runtime had already started it.
type Gate struct {
	mu    sync.Mutex
	delay time.Duration
	fire  func()
	timer *time.Timer
	gen   uint64
}

// NewGate creates a gate that invokes fire after delay of quiet. The callback
// runs on a timer goroutine; it must do its own locking.
func NewGate(delay time.Duration, fire func()) *Gate {
	return &Gate{delay: delay, fire: fire}
}

// Touch cancels any pending fire and schedules a fresh one.
func (g *Gate) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	gen := g.gen
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.delay, func() {
		g.mu.Lock()
		if gen != g.gen {
			g.mu.Unlock()
			return
		}
		g.timer = nil
		g.mu.Unlock()
		g.fire()
	})
}

// Stop cancels any pending fire without invoking it.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Pending reports whether a fire is currently scheduled.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}
