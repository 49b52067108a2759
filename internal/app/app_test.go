package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dropview/internal/config"
	"dropview/internal/geometry"
	"dropview/internal/scene"
	"dropview/internal/viewer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	width, height int
	attached      scene.Surface
	attaches      int
	detaches      int
	listeners     map[int]func(w, h int)
	next          int
	onKey         func(glfw.Key, glfw.Action)
	closeWanted   bool
	swaps         int
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{width: w, height: h, listeners: map[int]func(w, h int){}}
}

func (h *fakeHost) Attach(s scene.Surface) error {
	h.attached = s
	h.attaches++
	return nil
}

func (h *fakeHost) Detach(s scene.Surface) {
	if h.attached == s {
		h.attached = nil
	}
	h.detaches++
}

func (h *fakeHost) Size() (int, int) { return h.width, h.height }

func (h *fakeHost) OnResize(fn func(w, h int)) func() {
	id := h.next
	h.next++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

func (h *fakeHost) resize(w, ht int) {
	h.width, h.height = w, ht
	for _, fn := range h.listeners {
		fn(w, ht)
	}
}

func (h *fakeHost) OnKey(fn func(glfw.Key, glfw.Action)) { h.onKey = fn }
func (h *fakeHost) ShouldClose() bool                    { return h.closeWanted }
func (h *fakeHost) RequestClose()                        { h.closeWanted = true }
func (h *fakeHost) SwapBuffers()                         { h.swaps++ }

func (h *fakeHost) press(key glfw.Key) {
	h.onKey(key, glfw.Press)
	h.onKey(key, glfw.Release)
}

type fakeOverlay struct {
	width, height int
	draws         int
	lines         []string
}

func (o *fakeOverlay) SetViewport(w, h int) { o.width, o.height = w, h }

func (o *fakeOverlay) RenderLines(lines []string, _, _, _ float32, _ mgl32.Vec3) {
	o.draws++
	o.lines = lines
}

type surface struct{ w, h int }

func (s *surface) SetSize(w, h int) { s.w, s.h = w, h }
func (s *surface) Size() (int, int) { return s.w, s.h }

type mesh struct{ n int }

func (m *mesh) VertexCount() int { return m.n }
func (m *mesh) Dispose()         {}

type renderer struct {
	surface  *surface
	renders  int
	disposed bool
}

func (r *renderer) Surface() scene.Surface { return r.surface }

func (r *renderer) NewMesh(g *geometry.Geometry, _ scene.Material) (scene.MeshHandle, error) {
	return &mesh{n: g.VertexCount()}, nil
}

func (r *renderer) Render([]*scene.VisualMesh, scene.Camera) { r.renders++ }
func (r *renderer) Dispose()                                 { r.disposed = true }

type cubeLoader struct{}

func (cubeLoader) Load(context.Context, string) (*geometry.Geometry, error) {
	return &geometry.Geometry{Positions: []float32{
		0, 0, 0, 4, 0, 0, 4, 4, 4,
		0, 0, 0, 4, 4, 4, 0, 4, 4,
	}}, nil
}

// maxRand always picks the largest budget
type maxRand struct{}

func (maxRand) IntN(n int) int   { return n - 1 }
func (maxRand) Float64() float64 { return 0.25 }

type testApp struct {
	*App
	host      *fakeHost
	overlay   *fakeOverlay
	renderers []*renderer
	now       time.Duration
}

func newTestApp(t *testing.T, compact bool) *testApp {
	t.Helper()
	config.InitToggles(config.Render{})

	settings := config.Default()
	settings.Render.FPSLimit = 0
	ta := &testApp{host: newFakeHost(1000, 600), overlay: &fakeOverlay{}}
	ta.App = New(ta.host, ta.overlay, Options{
		URL:      "cube.stl",
		Compact:  compact,
		Settings: settings,
		Loader:   cubeLoader{},
		NewRenderer: func() (viewer.Renderer, error) {
			r := &renderer{surface: &surface{}}
			ta.renderers = append(ta.renderers, r)
			return r, nil
		},
		Rand:   maxRand{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ta.pollEvents = func() {}
	t.Cleanup(ta.Shutdown)
	require.NoError(t, ta.StartSession(context.Background()))
	return ta
}

func (ta *testApp) step(d time.Duration) {
	ta.now += d
	ta.tick(context.Background(), ta.now)
}

func TestStartSession(t *testing.T) {
	ta := newTestApp(t, false)

	s := ta.Session()
	require.NotNil(t, s)
	assert.True(t, s.Alive())
	assert.Equal(t, 3, s.Budget())
	assert.InDelta(t, 7.0, s.Viewport().OriginX, 1e-6)
	assert.Equal(t, 1000, ta.overlay.width)
	assert.Equal(t, 600, ta.overlay.height)
}

func TestTickRendersAndSwaps(t *testing.T) {
	ta := newTestApp(t, false)
	ta.step(16 * time.Millisecond)
	ta.step(16 * time.Millisecond)

	assert.Equal(t, 2, ta.host.swaps)
	// first frame only records the timestamp
	assert.Equal(t, 1, ta.renderers[0].renders)
}

func TestSpawnsThroughLoop(t *testing.T) {
	ta := newTestApp(t, false)
	for range 3 {
		ta.step(500 * time.Millisecond)
		require.Eventually(t, ta.loop.Idle, time.Second, time.Millisecond)
	}
	ta.step(16 * time.Millisecond)
	assert.Len(t, ta.Session().Objects(), 3)
	assert.Zero(t, ta.Session().Remaining())
}

func TestToggleCompactRestarts(t *testing.T) {
	ta := newTestApp(t, false)
	first := ta.Session()

	ta.host.press(glfw.KeyC)
	ta.step(16 * time.Millisecond)

	assert.False(t, first.Alive())
	assert.True(t, ta.Compact())
	require.NotSame(t, first, ta.Session())
	assert.True(t, ta.Session().Viewport().Compact)
	assert.Zero(t, ta.Session().Viewport().OriginX)
	assert.True(t, ta.renderers[0].disposed)
	assert.Len(t, ta.renderers, 2)
}

func TestRestartKeepsLayout(t *testing.T) {
	ta := newTestApp(t, true)
	first := ta.Session()

	ta.host.press(glfw.KeyR)
	ta.step(16 * time.Millisecond)

	assert.False(t, first.Alive())
	assert.True(t, ta.Session().Alive())
	assert.True(t, ta.Session().Viewport().Compact)
	assert.Equal(t, 1, ta.host.detaches)
}

func TestStatsOverlayToggle(t *testing.T) {
	ta := newTestApp(t, false)
	ta.step(16 * time.Millisecond)
	assert.Zero(t, ta.overlay.draws)

	ta.host.press(glfw.KeyF3)
	ta.step(16 * time.Millisecond)
	assert.True(t, config.ShowStats())
	assert.Equal(t, 1, ta.overlay.draws)
	require.NotEmpty(t, ta.overlay.lines)
	assert.Equal(t, "objects 0/3  loads 0", ta.overlay.lines[0])

	ta.host.press(glfw.KeyF3)
	ta.step(16 * time.Millisecond)
	assert.Equal(t, 1, ta.overlay.draws)
}

func TestFloorToggleSurvivesRestart(t *testing.T) {
	ta := newTestApp(t, false)
	ta.host.press(glfw.KeyF2)
	ta.step(16 * time.Millisecond)
	assert.True(t, config.ShowFloor())

	ta.host.press(glfw.KeyR)
	ta.step(16 * time.Millisecond)
	assert.True(t, config.ShowFloor())
}

func TestQuitKey(t *testing.T) {
	ta := newTestApp(t, false)
	ta.host.press(glfw.KeyEscape)
	ta.step(16 * time.Millisecond)
	assert.True(t, ta.host.ShouldClose())
}

func TestOverlayFollowsResize(t *testing.T) {
	ta := newTestApp(t, false)
	ta.host.resize(640, 480)
	assert.Equal(t, 640, ta.overlay.width)
	assert.Equal(t, 480, ta.overlay.height)
}

func TestShutdownIsIdempotent(t *testing.T) {
	ta := newTestApp(t, false)
	s := ta.Session()
	ta.Shutdown()
	ta.Shutdown()
	assert.False(t, s.Alive())
	assert.Nil(t, ta.Session())
	assert.Empty(t, ta.host.listeners)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	ta := newTestApp(t, false)
	ta.EndSession()
	ta.host.RequestClose()

	require.NoError(t, ta.Run(context.Background()))
	assert.Nil(t, ta.Session())
	assert.Zero(t, ta.host.swaps)
}

func TestRunStopsOnCancel(t *testing.T) {
	ta := newTestApp(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, ta.Run(ctx))
	assert.Zero(t, ta.host.swaps)
}

func TestRunReportsInvalidSettings(t *testing.T) {
	ta := newTestApp(t, false)
	ta.opts.Settings.Spawn.IntervalMS = 0
	err := ta.Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
}
