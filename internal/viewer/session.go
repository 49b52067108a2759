package viewer

import (
	"context"
	"fmt"
	"log/slog"

	"dropview/internal/geometry"
	"dropview/internal/physics"
	"dropview/internal/scene"

	"github.com/go-gl/mathgl/mgl64"
)

const floorDivisions = 20

// Session is one running viewer inside a container
type Session struct {
	log       *slog.Logger
	container Container
	renderer  Renderer
	world     *physics.World
	viewport  *Viewport
	spawner   *Spawner
	frames    *frameLoop

	floorBody *physics.Body
	floor     *scene.VisualMesh

	removeResize func()
	cancel       context.CancelFunc
	alive        bool
	stopped      bool
}

// Stats is a snapshot of session counters for the overlay and logs
type Stats struct {
	Objects   int
	Budget    int
	Remaining int
	Requested int
	Frames    uint64
	Substeps  uint64
	SimTime   float64
	Alive     bool
}

// Start builds the world, viewport, spawner and frame loop and starts the
// spawn timer and frame loop on deps.Scheduler.
//
// A nil container, or one that refuses the surface, yields an inert session
// whose Stop does nothing. Errors are returned only for invalid settings and
// renderer setup failures.
func Start(ctx context.Context, deps Deps, container Container, url string, compact bool) (*Session, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg := deps.Settings
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if container == nil {
		log.Warn("no container, viewer not started", "url", url)
		return &Session{log: log, stopped: true}, nil
	}

	r, err := deps.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("could not create renderer: %w", err)
	}
	if err := container.Attach(r.Surface()); err != nil {
		r.Dispose()
		log.Warn("container unavailable, viewer not started", "url", url, "error", err)
		return &Session{log: log, stopped: true}, nil
	}

	width, height := container.Size()
	vp := NewViewport(width, height, compact, cfg.Viewport, r.Surface())
	origin := float64(vp.State().OriginX)

	world := physics.NewWorld()
	world.Gravity = mgl64.Vec3{0, cfg.Physics.Gravity, 0}
	floorBody := physics.NewStatic(physics.Plane{}, mgl64.Vec3{origin, cfg.Physics.FloorY, 0})
	floorBody.Restitution = cfg.Physics.FloorRestitution
	floorBody.Friction = cfg.Physics.FloorFriction
	world.AddBody(floorBody)

	handle, err := r.NewMesh(geometry.Plane(float32(cfg.Physics.FloorSize), floorDivisions), scene.MaterialFloor)
	if err != nil {
		r.Dispose()
		container.Detach(r.Surface())
		return nil, fmt.Errorf("could not create floor mesh: %w", err)
	}
	floor := scene.NewVisualMesh(handle, scene.MaterialFloor, 1)
	copyTransform(floor, floorBody)
	floor.Visible = cfg.Render.ShowFloor

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		log:       log,
		container: container,
		renderer:  r,
		world:     world,
		viewport:  vp,
		floorBody: floorBody,
		floor:     floor,
		cancel:    cancel,
		alive:     true,
	}
	s.spawner = newSpawner(spawnerOptions{
		sched:    deps.Scheduler,
		loader:   deps.Loader,
		renderer: r,
		sim:      world,
		rand:     deps.Rand,
		log:      log,
		cfg:      cfg.Spawn,
		ctx:      ctx,
		url:      url,
		originX:  origin,
		alive:    s.Alive,
	})
	s.frames = &frameLoop{
		sched:    deps.Scheduler,
		sim:      world,
		renderer: r,
		viewport: vp,
		cfg:      cfg.Physics,
		objects:  func() []ObjectPair { return s.spawner.objects },
		floor:    floor,
	}

	s.removeResize = container.OnResize(s.onResize)
	s.spawner.start()
	s.frames.start()

	log.Info("viewer session started",
		"url", url,
		"budget", s.spawner.budget,
		"compact", compact,
		"width", width,
		"height", height,
		"origin_x", origin,
	)
	return s, nil
}

func (s *Session) onResize(width, height int) {
	if !s.alive {
		return
	}
	s.viewport.OnResize(width, height)
	s.log.Debug("viewport resized", "width", width, "height", height)
}

// Stop tears the session down: resize listener, spawn timer, frame loop,
// in-flight loads, meshes, renderer, physics world and finally the surface.
// Calling it again does nothing.
func (s *Session) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.alive = false

	if s.removeResize != nil {
		s.removeResize()
	}
	s.spawner.stop()
	s.frames.stop()
	s.cancel()

	for _, p := range s.spawner.objects {
		p.Mesh.Dispose()
	}
	s.floor.Dispose()
	s.renderer.Dispose()
	s.world.Clear()
	s.container.Detach(s.renderer.Surface())

	s.log.Info("viewer session stopped", "objects", len(s.spawner.objects), "frames", s.frames.frames)
}

// Alive reports whether the session is running
func (s *Session) Alive() bool { return s.alive }

// Objects returns the spawned pairs in spawn order
func (s *Session) Objects() []ObjectPair {
	if s.spawner == nil {
		return nil
	}
	out := make([]ObjectPair, len(s.spawner.objects))
	copy(out, s.spawner.objects)
	return out
}

// Budget returns the number of objects this session will try to create
func (s *Session) Budget() int {
	if s.spawner == nil {
		return 0
	}
	return s.spawner.budget
}

// Remaining returns how many objects are still to be created
func (s *Session) Remaining() int {
	if s.spawner == nil {
		return 0
	}
	return s.spawner.remaining
}

// Viewport returns the current viewport state
func (s *Session) Viewport() ViewportState {
	if s.viewport == nil {
		return ViewportState{}
	}
	return s.viewport.State()
}

// SetFloorVisible shows or hides the debug floor mesh
func (s *Session) SetFloorVisible(v bool) {
	if s.floor != nil {
		s.floor.Visible = v
	}
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() Stats {
	st := Stats{Alive: s.alive}
	if s.spawner == nil {
		return st
	}
	st.Objects = len(s.spawner.objects)
	st.Budget = s.spawner.budget
	st.Remaining = s.spawner.remaining
	st.Requested = s.spawner.requested
	st.Frames = s.frames.frames
	st.Substeps = s.world.Substeps()
	st.SimTime = s.world.Time()
	return st
}
