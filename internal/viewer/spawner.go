package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"dropview/internal/config"
	"dropview/internal/geometry"
	"dropview/internal/physics"
	"dropview/internal/runloop"
	"dropview/internal/scene"

	"github.com/go-gl/mathgl/mgl64"
)

// Spawner creates up to a random budget of objects, one per successful load.
// All methods run on the loop goroutine.
type Spawner struct {
	sched    Scheduler
	loader   Loader
	renderer Renderer
	sim      Simulation
	rand     Random
	log      *slog.Logger
	cfg      config.Spawn

	ctx     context.Context
	url     string
	originX float64
	alive   func() bool

	budget    int
	remaining int
	requested int
	timer     *runloop.Timer
	objects   []ObjectPair
}

type spawnerOptions struct {
	sched    Scheduler
	loader   Loader
	renderer Renderer
	sim      Simulation
	rand     Random
	log      *slog.Logger
	cfg      config.Spawn
	ctx      context.Context
	url      string
	originX  float64
	alive    func() bool
}

// newSpawner draws the budget. The timer starts with start.
func newSpawner(o spawnerOptions) *Spawner {
	budget := o.cfg.BudgetMin + o.rand.IntN(o.cfg.BudgetMax-o.cfg.BudgetMin+1)
	return &Spawner{
		sched:     o.sched,
		loader:    o.loader,
		renderer:  o.renderer,
		sim:       o.sim,
		rand:      o.rand,
		log:       o.log,
		cfg:       o.cfg,
		ctx:       o.ctx,
		url:       o.url,
		originX:   o.originX,
		alive:     o.alive,
		budget:    budget,
		remaining: budget,
	}
}

func (s *Spawner) start() {
	if s.remaining <= 0 {
		return
	}
	s.timer = s.sched.Every(time.Duration(s.cfg.IntervalMS)*time.Millisecond, s.tick)
}

// stop cancels the timer. Safe to call repeatedly.
func (s *Spawner) stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Spawner) tick() {
	if !s.alive() || s.remaining <= 0 {
		s.stop()
		return
	}
	ctx, loader, url := s.ctx, s.loader, s.url
	ok := s.sched.Go(func() func() {
		g, err := loader.Load(ctx, url)
		return func() { s.complete(g, err) }
	})
	if !ok {
		s.log.Warn("load queue full, skipping spawn tick", "url", url)
		return
	}
	s.requested++
}

// complete handles a finished load. Late results after stop or after the
// budget ran out are dropped.
func (s *Spawner) complete(g *geometry.Geometry, err error) {
	if !s.alive() {
		return
	}
	if err != nil {
		s.log.Warn("asset load failed", "url", s.url, "error", err)
		return
	}
	if s.remaining <= 0 {
		s.log.Debug("discarding load past spawn budget", "url", s.url)
		return
	}
	pair, err := s.spawn(g)
	if errors.Is(err, geometry.ErrDegenerate) {
		s.log.Warn("skipping degenerate geometry", "url", s.url)
		return
	}
	if err != nil {
		s.log.Warn("could not spawn object", "url", s.url, "error", err)
		return
	}
	s.objects = append(s.objects, pair)
	s.remaining--
	s.log.Info("spawned object", "index", len(s.objects), "budget", s.budget, "remaining", s.remaining)
	if s.remaining == 0 {
		s.stop()
	}
}

func (s *Spawner) spawn(g *geometry.Geometry) (ObjectPair, error) {
	if g == nil {
		return ObjectPair{}, geometry.ErrDegenerate
	}
	scale, err := g.Normalize(float32(s.cfg.TargetSize))
	if err != nil {
		return ObjectPair{}, err
	}
	handle, err := s.renderer.NewMesh(g, scene.MaterialNormal)
	if err != nil {
		return ObjectPair{}, fmt.Errorf("upload mesh: %w", err)
	}

	h := s.cfg.TargetSize / 2
	body := physics.NewBody(physics.BodyOptions{
		Mass:           s.cfg.Mass,
		Shape:          physics.Box{HalfExtents: mgl64.Vec3{h, h, h}},
		Position:       mgl64.Vec3{s.originX + s.jitter(), s.cfg.DropHeight, s.jitter()},
		Orientation:    s.randomOrientation(),
		Restitution:    s.cfg.Restitution,
		Friction:       s.cfg.Friction,
		LinearDamping:  physics.DefaultLinearDamping,
		AngularDamping: physics.DefaultAngularDamping,
	})
	mesh := scene.NewVisualMesh(handle, scene.MaterialNormal, scale)
	copyTransform(mesh, body)
	s.sim.AddBody(body)
	return ObjectPair{Body: body, Mesh: mesh}, nil
}

// jitter returns a uniform offset in [-Jitter, Jitter] so boxes don't land on one spot
func (s *Spawner) jitter() float64 {
	return (s.rand.Float64()*2 - 1) * s.cfg.Jitter
}

func (s *Spawner) randomOrientation() mgl64.Quat {
	x := s.rand.Float64() * 2 * math.Pi
	y := s.rand.Float64() * 2 * math.Pi
	z := s.rand.Float64() * 2 * math.Pi
	return mgl64.AnglesToQuat(x, y, z, mgl64.XYZ)
}
