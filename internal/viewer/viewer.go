// Package viewer drops rigid-body copies of a mesh onto a floor and draws them.
//
// A Session ties together a physics world, a spawner that loads the asset and
// creates objects on a timer, a self-rescheduling frame loop and a viewport
// that follows the container size. Everything runs on the scheduler's loop
// goroutine; only asset loads happen elsewhere and they post their result back.
package viewer

import (
	"context"
	"log/slog"
	"time"

	"dropview/internal/config"
	"dropview/internal/geometry"
	"dropview/internal/physics"
	"dropview/internal/runloop"
	"dropview/internal/scene"
)

// Loader fetches and decodes the mesh behind url. Called off the loop goroutine.
type Loader interface {
	Load(ctx context.Context, url string) (*geometry.Geometry, error)
}

// Container hosts the draw surface and reports its size
type Container interface {
	Attach(s scene.Surface) error
	Detach(s scene.Surface)
	Size() (width, height int)
	// OnResize registers fn for size changes and returns a function removing it
	OnResize(fn func(width, height int)) (remove func())
}

// Renderer owns GPU resources for one session
type Renderer interface {
	Surface() scene.Surface
	NewMesh(g *geometry.Geometry, m scene.Material) (scene.MeshHandle, error)
	Render(meshes []*scene.VisualMesh, cam scene.Camera)
	Dispose()
}

// Scheduler is the single-threaded loop the session runs on.
// *runloop.Loop implements it.
type Scheduler interface {
	RequestFrame(fn runloop.FrameFunc) runloop.FrameID
	CancelFrame(id runloop.FrameID)
	Every(interval time.Duration, fn func()) *runloop.Timer
	Go(job runloop.Job) bool
}

// Random is the source for the spawn budget and orientations.
// *rand.Rand from math/rand/v2 implements it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// Simulation is the part of the physics world the spawner and frame loop use
type Simulation interface {
	AddBody(b *physics.Body)
	Step(fixedDelta, realDelta float64, maxSubsteps int)
}

// Deps are the collaborators of a session
type Deps struct {
	Scheduler   Scheduler
	Loader      Loader
	NewRenderer func() (Renderer, error)
	Rand        Random
	Logger      *slog.Logger // defaults to slog.Default()
	Settings    config.Settings
}

// ObjectPair is one spawned object: its body and the mesh that mirrors it
type ObjectPair struct {
	Body *physics.Body
	Mesh *scene.VisualMesh
}
