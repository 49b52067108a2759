// Package app runs the viewer inside a host window: it owns the run loop,
// maps key presses to session commands and paces frames.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dropview/internal/config"
	"dropview/internal/input"
	"dropview/internal/profiling"
	"dropview/internal/runloop"
	"dropview/internal/viewer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	slowFrame = 16 * time.Millisecond

	defaultWorkers   = 2
	defaultQueueSize = 8

	overlayX, overlayY = 12, 28
	overlayLineStep    = 22
)

var overlayColor = mgl32.Vec3{1, 1, 1}

// Host is the window the app drives. *window.Window implements it.
type Host interface {
	viewer.Container
	OnKey(fn func(key glfw.Key, action glfw.Action))
	ShouldClose() bool
	RequestClose()
	SwapBuffers()
}

// Overlay draws the stats text. *graphics.TextOverlay implements it.
type Overlay interface {
	SetViewport(width, height int)
	RenderLines(lines []string, x, y, lineStep float32, color mgl32.Vec3)
}

// Options configure the app and the sessions it starts
type Options struct {
	URL         string
	Compact     bool
	Settings    config.Settings
	Loader      viewer.Loader
	NewRenderer func() (viewer.Renderer, error)
	Rand        viewer.Random
	Logger      *slog.Logger
	Workers     int // load workers, default 2
	QueueSize   int // pending loads, default 8
}

// App owns the run loop and the current viewer session
type App struct {
	host    Host
	overlay Overlay
	input   *input.Manager
	loop    *runloop.Loop
	opts    Options
	log     *slog.Logger

	session *viewer.Session
	compact bool

	limiter    *FPSLimiter
	fps        fpsMeter
	pollEvents func()
	start      time.Time

	removeResize func()
	shutdown     bool
}

// New creates an app for host. overlay may be nil, in which case no stats are drawn.
func New(host Host, overlay Overlay, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = defaultQueueSize
	}
	a := &App{
		host:       host,
		overlay:    overlay,
		input:      input.NewManager(),
		loop:       runloop.New(workers, queue),
		opts:       opts,
		log:        log,
		compact:    opts.Compact,
		limiter:    NewFPSLimiter(opts.Settings.Render.FPSLimit),
		pollEvents: glfw.PollEvents,
		start:      time.Now(),
	}
	host.OnKey(a.input.HandleKeyEvent)
	if overlay != nil {
		overlay.SetViewport(host.Size())
		a.removeResize = host.OnResize(overlay.SetViewport)
	}
	return a
}

// Run starts a session and ticks until the window closes or ctx is done
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()
	if err := a.StartSession(ctx); err != nil {
		return err
	}
	for !a.host.ShouldClose() && ctx.Err() == nil {
		a.tick(ctx, time.Since(a.start))
	}
	return nil
}

// StartSession stops the current session, if any, and starts a new one
func (a *App) StartSession(ctx context.Context) error {
	a.EndSession()
	s, err := viewer.Start(ctx, viewer.Deps{
		Scheduler:   a.loop,
		Loader:      a.opts.Loader,
		NewRenderer: a.opts.NewRenderer,
		Rand:        a.opts.Rand,
		Logger:      a.log,
		Settings:    a.opts.Settings,
	}, a.host, a.opts.URL, a.compact)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.SetFloorVisible(config.ShowFloor())
	a.session = s
	return nil
}

// EndSession stops the current session
func (a *App) EndSession() {
	if a.session != nil {
		a.session.Stop()
		a.session = nil
	}
}

// Session returns the running session, or nil
func (a *App) Session() *viewer.Session { return a.session }

// Compact reports the layout new sessions start with
func (a *App) Compact() bool { return a.compact }

// Shutdown ends the session and stops the load workers. Safe to call twice.
func (a *App) Shutdown() {
	if a.shutdown {
		return
	}
	a.shutdown = true
	a.EndSession()
	if a.removeResize != nil {
		a.removeResize()
	}
	a.loop.Shutdown()
}

func (a *App) tick(ctx context.Context, now time.Duration) {
	profiling.ResetFrame()
	startTick := time.Now()

	a.pollEvents()
	a.handleActions(ctx)

	a.loop.Tick(now)
	a.fps.frame(startTick)
	if config.ShowStats() && a.overlay != nil && a.session != nil {
		lines := statsLines(a.session.Stats(), a.session.Viewport(), a.fps.value())
		a.overlay.RenderLines(lines, overlayX, overlayY, overlayLineStep, overlayColor)
	}

	a.host.SwapBuffers()
	a.input.PostUpdate()

	if d := time.Since(startTick); d > slowFrame {
		a.log.Debug("slow frame", "duration", d, "top", profiling.TopN(5))
	}

	a.limiter.Wait()
}

func (a *App) handleActions(ctx context.Context) {
	if a.input.JustPressed(input.ActionQuit) {
		a.host.RequestClose()
		return
	}
	if a.input.JustPressed(input.ActionToggleStats) {
		a.log.Debug("stats overlay", "visible", config.ToggleStats())
	}
	if a.input.JustPressed(input.ActionToggleFloor) {
		v := config.ToggleFloor()
		if a.session != nil {
			a.session.SetFloorVisible(v)
		}
	}

	restart := a.input.JustPressed(input.ActionRestart)
	if a.input.JustPressed(input.ActionToggleCompact) {
		a.compact = !a.compact
		restart = true
	}
	if !restart {
		return
	}
	if err := a.StartSession(ctx); err != nil {
		a.log.Error("restart failed", "error", err)
	}
}
