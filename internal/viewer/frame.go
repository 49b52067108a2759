package viewer

import (
	"time"

	"dropview/internal/config"
	"dropview/internal/physics"
	"dropview/internal/profiling"
	"dropview/internal/runloop"
	"dropview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// frameLoop steps physics, mirrors bodies onto meshes and draws, once per frame
type frameLoop struct {
	sched    Scheduler
	sim      Simulation
	renderer Renderer
	viewport *Viewport
	cfg      config.Physics
	objects  func() []ObjectPair
	floor    *scene.VisualMesh

	id      runloop.FrameID
	last    time.Duration
	started bool
	stopped bool
	frames  uint64
	draw    []*scene.VisualMesh
}

func (f *frameLoop) start() {
	f.id = f.sched.RequestFrame(f.frame)
}

// stop cancels the pending frame. No frame runs after it returns.
func (f *frameLoop) stop() {
	if f.stopped {
		return
	}
	f.stopped = true
	f.sched.CancelFrame(f.id)
}

func (f *frameLoop) frame(now time.Duration) {
	if f.stopped {
		return
	}
	if !f.started {
		// nothing to measure against yet
		f.started = true
		f.last = now
		f.id = f.sched.RequestFrame(f.frame)
		return
	}
	elapsed := max(now-f.last, 0)
	f.last = now

	func() {
		defer profiling.Track("physics.Step")()
		f.sim.Step(f.cfg.FixedStep, elapsed.Seconds(), f.cfg.MaxSubsteps)
	}()

	f.draw = f.draw[:0]
	func() {
		defer profiling.Track("viewer.syncTransforms")()
		for _, p := range f.objects() {
			copyTransform(p.Mesh, p.Body)
			f.draw = append(f.draw, p.Mesh)
		}
	}()
	if f.floor != nil {
		f.draw = append(f.draw, f.floor)
	}

	func() {
		defer profiling.Track("renderer.Render")()
		f.renderer.Render(f.draw, f.viewport.Camera())
	}()
	f.frames++

	f.id = f.sched.RequestFrame(f.frame)
}

func copyTransform(m *scene.VisualMesh, b *physics.Body) {
	p, q := b.Position, b.Orientation
	m.Position = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	m.Rotation = mgl32.Quat{W: float32(q.W), V: mgl32.Vec3{float32(q.V[0]), float32(q.V[1]), float32(q.V[2])}}
}
