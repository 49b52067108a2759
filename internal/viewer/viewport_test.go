package viewer

import (
	"testing"

	"dropview/internal/config"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestComputeCamera(t *testing.T) {
	cfg := config.Default().Viewport
	cases := []struct {
		name          string
		width, height int
		compact       bool
		origin        float32
		aspect        float32
	}{
		{"wide", 1200, 800, false, 8.4, 1.5},
		{"compact", 1200, 800, true, 0, 1.5},
		{"narrow wide", 500, 1000, false, 3.5, 0.5},
		{"zero height", 640, 0, false, 4.48, 640},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := ComputeCamera(tc.width, tc.height, tc.compact, cfg)
			assert.InDelta(t, tc.origin, st.OriginX, 1e-5)
			assert.InDelta(t, tc.aspect, st.Aspect, 1e-5)
			assert.Equal(t, tc.compact, st.Compact)
			assert.Equal(t, mgl32.Vec3{st.OriginX, 5, 15}, st.CameraPosition)
			assert.Equal(t, mgl32.Vec3{st.OriginX, 0, 0}, st.CameraTarget)
		})
	}
}

func TestViewportOnResize(t *testing.T) {
	surface := &fakeSurface{}
	v := NewViewport(1200, 800, false, config.Default().Viewport, surface)
	assert.Equal(t, 1200, surface.width)
	assert.Equal(t, 800, surface.height)

	v.OnResize(1920, 1080)
	st := v.State()
	assert.InDelta(t, 1920.0/1080.0, st.Aspect, 1e-6)
	assert.InDelta(t, 1920.0/1080.0, v.Camera().AspectRatio, 1e-6)
	assert.Equal(t, 1920, surface.width)
	assert.Equal(t, 1080, surface.height)
	assert.Equal(t, mgl32.Vec3{8.4, 5, 15}, v.Camera().Position)
	assert.Equal(t, float32(75), v.Camera().FOV)
}
