package viewer

import (
	"dropview/internal/config"
	"dropview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// ViewportState is the camera placement derived from the window size and layout
type ViewportState struct {
	Width, Height int
	Aspect        float32
	Compact       bool
	// OriginX is where the floor and spawn point sit horizontally
	OriginX        float32
	CameraPosition mgl32.Vec3
	CameraTarget   mgl32.Vec3
}

// ComputeCamera places the camera for a window of the given size.
// The wide layout shifts the origin toward the right side of the window so
// page content on the left stays readable; compact keeps it centered.
func ComputeCamera(width, height int, compact bool, cfg config.Viewport) ViewportState {
	var origin float32
	if !compact {
		origin = float32(float64(width) * cfg.WideOffsetRatio / cfg.PixelsPerUnit)
	}
	return ViewportState{
		Width:          width,
		Height:         height,
		Aspect:         float32(width) / float32(max(height, 1)),
		Compact:        compact,
		OriginX:        origin,
		CameraPosition: mgl32.Vec3{origin, float32(cfg.CameraHeight), float32(cfg.CameraDistance)},
		CameraTarget:   mgl32.Vec3{origin, 0, 0},
	}
}

// Viewport holds the session's ViewportState and camera. It changes only
// through OnResize.
type Viewport struct {
	state   ViewportState
	camera  scene.Camera
	surface scene.Surface
}

// NewViewport computes the initial state and sizes the surface to match
func NewViewport(width, height int, compact bool, cfg config.Viewport, surface scene.Surface) *Viewport {
	st := ComputeCamera(width, height, compact, cfg)
	cam := scene.NewCamera(width, height, float32(cfg.FOV), float32(cfg.Near), float32(cfg.Far))
	cam.Position = st.CameraPosition
	cam.Target = st.CameraTarget
	v := &Viewport{state: st, camera: cam, surface: surface}
	if surface != nil {
		surface.SetSize(width, height)
	}
	return v
}

// OnResize updates the aspect ratio, projection and surface size.
// The camera anchor stays where the session started so spawned bodies remain in view.
func (v *Viewport) OnResize(width, height int) {
	v.state.Width, v.state.Height = width, height
	v.state.Aspect = float32(width) / float32(max(height, 1))
	v.camera.SetViewport(width, height)
	if v.surface != nil {
		v.surface.SetSize(width, height)
	}
}

func (v *Viewport) State() ViewportState { return v.state }

func (v *Viewport) Camera() scene.Camera { return v.camera }
