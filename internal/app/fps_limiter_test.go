package app

import (
	"testing"
	"time"

	"dropview/internal/viewer"

	"github.com/stretchr/testify/assert"
)

func TestFPSLimiterUncapped(t *testing.T) {
	f := NewFPSLimiter(0)
	start := time.Now()
	for range 100 {
		f.Wait()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, f.next.IsZero())
}

func TestFPSLimiterPaces(t *testing.T) {
	f := NewFPSLimiter(100)
	start := time.Now()
	for range 5 {
		f.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestFPSLimiterResyncsAfterHitch(t *testing.T) {
	f := NewFPSLimiter(100)
	f.Wait()
	time.Sleep(50 * time.Millisecond)
	f.Wait()
	// a late frame schedules the next deadline from now instead of the missed one
	assert.Greater(t, time.Until(f.next), time.Duration(0))
}

func TestFPSLimiterSetLimit(t *testing.T) {
	f := NewFPSLimiter(60)
	f.Wait()
	f.SetLimit(0)
	assert.Equal(t, 0, f.Limit())
	assert.True(t, f.next.IsZero())
}

func TestFPSMeter(t *testing.T) {
	var m fpsMeter
	start := time.Now()
	m.frame(start)
	assert.Zero(t, m.value())

	m.frame(start.Add(20 * time.Millisecond))
	assert.InDelta(t, 50.0, m.value(), 1e-6)

	m.frame(start.Add(30 * time.Millisecond))
	assert.InDelta(t, 50+(100-50)*fpsSmoothing, m.value(), 1e-6)
}

func TestStatsLines(t *testing.T) {
	lines := statsLines(
		viewer.Stats{Objects: 2, Budget: 3, Requested: 3, Frames: 12345, Substeps: 1500, SimTime: 25},
		viewer.ViewportState{Width: 1280, Height: 720, Compact: true},
		59.94,
	)
	assert.Equal(t, []string{
		"objects 2/3  loads 3",
		"fps 59.9  frames 12,345",
		"substeps 1,500  sim 25s",
		lines[3],
		"compact 1280x720",
	}, lines)
	assert.Contains(t, lines[3], "physics ")
}
