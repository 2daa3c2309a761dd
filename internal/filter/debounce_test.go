package filter

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_CoalescesBurstIntoOneFire(t *testing.T) {
	var fires atomic.Int64
	g := NewGate(50*time.Millisecond, func() { fires.Add(1) })

	// Three edits inside the delay window: only one fire, after the last.
	g.Touch()
	time.Sleep(10 * time.Millisecond)
	g.Touch()
	time.Sleep(10 * time.Millisecond)
	g.Touch()

	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, int64(0), fires.Load(), "still inside the quiet period")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), fires.Load())
}

func TestGate_SeparateQuietPeriodsFireSeparately(t *testing.T) {
	var fires atomic.Int64
	g := NewGate(20*time.Millisecond, func() { fires.Add(1) })

	g.Touch()
	time.Sleep(60 * time.Millisecond)
	g.Touch()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int64(2), fires.Load())
}

func TestGate_StopCancelsPendingFire(t *testing.T) {
	var fires atomic.Int64
	g := NewGate(20*time.Millisecond, func() { fires.Add(1) })

	g.Touch()
	assert.True(t, g.Pending())
	g.Stop()
	assert.False(t, g.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(0), fires.Load(), "cancelled fire has no observable effect")
}

func TestGate_PendingClearsAfterFire(t *testing.T) {
	g := NewGate(10*time.Millisecond, func() {})

	g.Touch()
	assert.True(t, g.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.False(t, g.Pending())
}
