package app

import "time"

// spinWindow is how close to the deadline Wait stops sleeping and busy-waits
const spinWindow = 200 * time.Microsecond

// FPSLimiter paces the host loop to a frame rate cap
type FPSLimiter struct {
	limit int
	next  time.Time
}

// NewFPSLimiter creates a limiter capped at limit frames per second. 0 disables it.
func NewFPSLimiter(limit int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Limit returns the current cap
func (f *FPSLimiter) Limit() int { return f.limit }

// SetLimit changes the cap and restarts pacing from the next Wait
func (f *FPSLimiter) SetLimit(limit int) {
	f.limit = limit
	f.next = time.Time{}
}

// Wait blocks until the next frame is due.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait() {
	if f.limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(f.limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// Resync after a hitch so we don't try to catch up with a burst of frames
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
