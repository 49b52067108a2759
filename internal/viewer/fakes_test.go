package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"dropview/internal/config"
	"dropview/internal/geometry"
	"dropview/internal/runloop"
	"dropview/internal/scene"

	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	width, height int
}

func (s *fakeSurface) SetSize(w, h int)          { s.width, s.height = w, h }
func (s *fakeSurface) Size() (width, height int) { return s.width, s.height }

type fakeMesh struct {
	vertices int
	disposed int
}

func (m *fakeMesh) VertexCount() int { return m.vertices }
func (m *fakeMesh) Dispose()         { m.disposed++ }

type fakeRenderer struct {
	surface  *fakeSurface
	meshes   []*fakeMesh
	renders  int
	lastDraw []*scene.VisualMesh
	disposed int
	meshErr  error
}

func (r *fakeRenderer) Surface() scene.Surface { return r.surface }

func (r *fakeRenderer) NewMesh(g *geometry.Geometry, _ scene.Material) (scene.MeshHandle, error) {
	if r.meshErr != nil {
		return nil, r.meshErr
	}
	m := &fakeMesh{vertices: g.VertexCount()}
	r.meshes = append(r.meshes, m)
	return m, nil
}

func (r *fakeRenderer) Render(meshes []*scene.VisualMesh, _ scene.Camera) {
	r.renders++
	r.lastDraw = append(r.lastDraw[:0], meshes...)
}

func (r *fakeRenderer) Dispose() { r.disposed++ }

type fakeContainer struct {
	width, height int
	attached      scene.Surface
	attachErr     error
	detached      int
	listeners     map[int]func(w, h int)
	nextListener  int
}

func newFakeContainer(w, h int) *fakeContainer {
	return &fakeContainer{width: w, height: h, listeners: map[int]func(w, h int){}}
}

func (c *fakeContainer) Attach(s scene.Surface) error {
	if c.attachErr != nil {
		return c.attachErr
	}
	c.attached = s
	return nil
}

func (c *fakeContainer) Detach(scene.Surface) {
	c.attached = nil
	c.detached++
}

func (c *fakeContainer) Size() (int, int) { return c.width, c.height }

func (c *fakeContainer) OnResize(fn func(w, h int)) func() {
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

func (c *fakeContainer) resize(w, h int) {
	c.width, c.height = w, h
	for _, fn := range c.listeners {
		fn(w, h)
	}
}

// fakeLoader returns a copy of geom, or the next queued error. With a gate set,
// every load blocks until the gate is closed.
type fakeLoader struct {
	mu    sync.Mutex
	geom  *geometry.Geometry
	errs  []error
	calls int
	gate  chan struct{}
}

func (l *fakeLoader) Load(ctx context.Context, _ string) (*geometry.Geometry, error) {
	l.mu.Lock()
	l.calls++
	var err error
	if len(l.errs) > 0 {
		err, l.errs = l.errs[0], l.errs[1:]
	}
	gate := l.gate
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return l.geom.Clone(), nil
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// fixedRand returns n for every IntN and f for every Float64
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) IntN(int) int     { return r.n }
func (r fixedRand) Float64() float64 { return r.f }

// budgetRand draws budget from the default 1..3 range
func budgetRand(budget int) fixedRand {
	return fixedRand{n: budget - 1, f: 0.2}
}

// stepRand walks Float64 through [0,1) so consecutive draws differ
type stepRand struct {
	n, i int
}

func (r *stepRand) IntN(int) int { return r.n }

func (r *stepRand) Float64() float64 {
	f := math.Mod(float64(r.i)*0.37, 1)
	r.i++
	return f
}

var errNetwork = errors.New("connection reset")

// cubeGeometry is a 4x4x4 cube worth of triangles centered away from the origin
func cubeGeometry() *geometry.Geometry {
	return &geometry.Geometry{
		Positions: []float32{
			1, 1, 1, 5, 1, 1, 5, 5, 5,
			1, 1, 1, 5, 5, 5, 1, 5, 5,
		},
	}
}

type harness struct {
	t         *testing.T
	loop      *runloop.Loop
	now       time.Duration
	loader    *fakeLoader
	renderer  *fakeRenderer
	container *fakeContainer
	deps      Deps
}

func newHarness(t *testing.T, budget int) *harness {
	t.Helper()
	loop := runloop.New(2, 8)
	t.Cleanup(loop.Shutdown)

	h := &harness{
		t:         t,
		loop:      loop,
		loader:    &fakeLoader{geom: cubeGeometry()},
		renderer:  &fakeRenderer{surface: &fakeSurface{}},
		container: newFakeContainer(1200, 800),
	}
	h.deps = Deps{
		Scheduler:   loop,
		Loader:      h.loader,
		NewRenderer: func() (Renderer, error) { return h.renderer, nil },
		Rand:        budgetRand(budget),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Settings:    config.Default(),
	}
	return h
}

func (h *harness) start(compact bool) *Session {
	h.t.Helper()
	s, err := Start(context.Background(), h.deps, h.container, "benchy.stl", compact)
	require.NoError(h.t, err)
	return s
}

// step advances the clock and runs timers and frames
func (h *harness) step(d time.Duration) {
	h.now += d
	h.loop.Tick(h.now)
}

// flush waits for in-flight loads and runs their completions without moving the clock
func (h *harness) flush() {
	h.t.Helper()
	require.Eventually(h.t, h.loop.Idle, 2*time.Second, time.Millisecond)
	h.loop.Tick(h.now)
}

// run steps in 16ms frames for d, flushing loads after every frame
func (h *harness) run(d time.Duration) {
	h.t.Helper()
	for end := h.now + d; h.now < end; {
		h.step(16 * time.Millisecond)
		h.flush()
	}
}

func newTestVisual() *scene.VisualMesh {
	return scene.NewVisualMesh(&fakeMesh{vertices: 3}, scene.MaterialNormal, 1)
}
