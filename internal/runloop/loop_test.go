package runloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerFiresEveryInterval(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	fired := 0
	l.Every(500*time.Millisecond, func() { fired++ })

	l.Tick(499 * time.Millisecond)
	assert.Equal(t, 0, fired)
	l.Tick(500 * time.Millisecond)
	assert.Equal(t, 1, fired)
	l.Tick(999 * time.Millisecond)
	assert.Equal(t, 1, fired)
	l.Tick(time.Second)
	assert.Equal(t, 2, fired)
}

func TestTimerDoesNotBurstAfterStall(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	fired := 0
	l.Every(100*time.Millisecond, func() { fired++ })

	l.Tick(5 * time.Second)
	assert.Equal(t, 1, fired)
	l.Tick(5*time.Second + 50*time.Millisecond)
	assert.Equal(t, 1, fired)
	l.Tick(5*time.Second + 100*time.Millisecond)
	assert.Equal(t, 2, fired)
}

func TestTimerStop(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	fired := 0
	var timer *Timer
	timer = l.Every(10*time.Millisecond, func() {
		fired++
		if fired == 2 {
			timer.Stop()
		}
	})
	for i := 1; i <= 10; i++ {
		l.Tick(time.Duration(i) * 10 * time.Millisecond)
	}
	assert.Equal(t, 2, fired)
	assert.True(t, timer.Stopped())
	timer.Stop()
	assert.Empty(t, l.timers)
}

func TestFramesRunOncePerTick(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	var seen []time.Duration
	var frame FrameFunc
	frame = func(now time.Duration) {
		seen = append(seen, now)
		if len(seen) < 3 {
			l.RequestFrame(frame)
		}
	}
	l.RequestFrame(frame)

	for i := 1; i <= 5; i++ {
		l.Tick(time.Duration(i) * 16 * time.Millisecond)
	}
	assert.Equal(t, []time.Duration{16 * time.Millisecond, 32 * time.Millisecond, 48 * time.Millisecond}, seen)
	assert.Zero(t, l.PendingFrames())
}

func TestCancelFrame(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	ran := map[string]bool{}
	var second FrameID
	l.RequestFrame(func(time.Duration) {
		ran["first"] = true
		l.CancelFrame(second)
	})
	second = l.RequestFrame(func(time.Duration) { ran["second"] = true })
	third := l.RequestFrame(func(time.Duration) { ran["third"] = true })
	l.CancelFrame(third)
	l.CancelFrame(FrameID(999))

	l.Tick(time.Millisecond)
	assert.Equal(t, map[string]bool{"first": true}, ran)
}

func TestTickOrder(t *testing.T) {
	l := New(1, 4)
	defer l.Shutdown()

	var order []string
	l.RequestFrame(func(time.Duration) { order = append(order, "frame") })
	l.Every(time.Millisecond, func() { order = append(order, "timer") })
	l.Post(func() { order = append(order, "posted") })

	l.Tick(time.Millisecond)
	assert.Equal(t, []string{"posted", "timer", "frame"}, order)
}

func TestJobCompletionRunsOnTick(t *testing.T) {
	l := New(2, 4)
	defer l.Shutdown()

	results := make(chan int, 1)
	done := false
	require.True(t, l.Go(func() func() {
		v := 42
		return func() {
			done = true
			results <- v
		}
	}))

	require.Eventually(t, l.Idle, time.Second, time.Millisecond)
	assert.Equal(t, 1, l.PendingPosts())
	assert.False(t, done)
	l.Tick(time.Millisecond)
	assert.True(t, done)
	assert.Equal(t, 42, <-results)
}

func TestGoAfterShutdown(t *testing.T) {
	l := New(1, 1)
	l.Shutdown()
	assert.False(t, l.Go(func() func() { return nil }))
}

func TestClockIsMonotonic(t *testing.T) {
	l := New(1, 1)
	defer l.Shutdown()

	l.Tick(time.Second)
	l.Tick(500 * time.Millisecond)
	assert.Equal(t, time.Second, l.Now())
}

func TestGoRejectsWhenQueueFull(t *testing.T) {
	l := New(1, 1)
	defer l.Shutdown()

	gate := make(chan struct{})
	started := make(chan struct{})
	require.True(t, l.Go(func() func() {
		close(started)
		<-gate
		return nil
	}))
	<-started
	require.True(t, l.Go(func() func() { return nil }))
	assert.False(t, l.Go(func() func() { return nil }))
	assert.False(t, l.Idle())

	close(gate)
	require.Eventually(t, l.Idle, time.Second, time.Millisecond)
	// nil completions post nothing
	assert.Zero(t, l.PendingPosts())
}
