// Package runloop is the host's single-threaded event loop. Timers, frame
// callbacks and job completions all run on the goroutine that calls Tick, so
// the state they touch needs no locking.
package runloop

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// FrameFunc is called once on the next Tick with the loop clock
type FrameFunc func(now time.Duration)

// FrameID identifies a pending frame request
type FrameID uint64

// Job runs on a worker goroutine. The returned completion, if any, runs on the
// loop goroutine during a later Tick.
type Job func() func()

// Loop owns the timers, frame requests and worker pool of the host
type Loop struct {
	mu     sync.Mutex
	posted []func()

	jobQueue chan Job
	inflight atomic.Int64
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	now       time.Duration
	timers    []*Timer
	frames    map[FrameID]FrameFunc
	running   map[FrameID]FrameFunc // batch of the Tick in progress
	nextFrame FrameID
}

// New starts a loop backed by workers goroutines and a job queue of queueSize
func New(workers, queueSize int) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		frames:   make(map[FrameID]FrameFunc),
	}
	for range max(workers, 1) {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

func (l *Loop) worker() {
	defer l.wg.Done()
	for {
		select {
		case job := <-l.jobQueue:
			if done := job(); done != nil {
				l.Post(done)
			}
			l.inflight.Add(-1)
		case <-l.ctx.Done():
			return
		}
	}
}

// Now returns the clock value of the current or last Tick
func (l *Loop) Now() time.Duration {
	return l.now
}

// Post queues fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// PendingPosts returns the number of completions waiting for the next Tick
func (l *Loop) PendingPosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted)
}

// Go submits a job to the worker pool.
// Returns false if the queue is full or the loop was shut down.
func (l *Loop) Go(job Job) bool {
	if l.ctx.Err() != nil {
		return false
	}
	l.inflight.Add(1)
	select {
	case l.jobQueue <- job:
		return true
	default:
		l.inflight.Add(-1)
		return false
	}
}

// Idle reports whether every submitted job has finished and posted its completion
func (l *Loop) Idle() bool {
	return l.inflight.Load() == 0
}

// Every calls fn on the loop goroutine every interval, starting one interval from now
func (l *Loop) Every(interval time.Duration, fn func()) *Timer {
	t := &Timer{interval: interval, next: l.now + interval, fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// RequestFrame schedules fn for the next Tick
func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.nextFrame++
	l.frames[l.nextFrame] = fn
	return l.nextFrame
}

// CancelFrame drops a pending frame request. Unknown ids are ignored.
func (l *Loop) CancelFrame(id FrameID) {
	delete(l.frames, id)
	delete(l.running, id)
}

// PendingFrames returns the number of frame requests waiting for the next Tick
func (l *Loop) PendingFrames() int {
	return len(l.frames)
}

// Tick advances the clock to now and runs, in order: posted completions,
// due timers, then the frame requests made before this Tick.
func (l *Loop) Tick(now time.Duration) {
	if now > l.now {
		l.now = now
	}

	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	for _, t := range append([]*Timer(nil), l.timers...) {
		if t.stopped || l.now < t.next {
			continue
		}
		t.next += t.interval
		if t.next <= l.now {
			t.next = l.now + t.interval
		}
		t.fn()
	}
	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	l.timers = live

	l.running = l.frames
	l.frames = make(map[FrameID]FrameFunc)
	ids := make([]FrameID, 0, len(l.running))
	for id := range l.running {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := l.running[id]; ok {
			fn(l.now)
		}
	}
	l.running = nil
}

// Shutdown stops the workers and waits for running jobs to return.
// Queued jobs that have not started are dropped.
func (l *Loop) Shutdown() {
	l.cancel()
	l.wg.Wait()
}

// Timer is a repeating callback created by Every
type Timer struct {
	interval time.Duration
	next     time.Duration
	fn       func()
	stopped  bool
}

// Stop prevents further calls. Calling Stop more than once is fine.
func (t *Timer) Stop() {
	t.stopped = true
}

// Stopped reports whether Stop was called
func (t *Timer) Stopped() bool {
	return t.stopped
}
