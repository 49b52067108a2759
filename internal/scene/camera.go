package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking from Position at Target
type Camera struct {
	Position    mgl32.Vec3
	Target      mgl32.Vec3
	Up          mgl32.Vec3
	AspectRatio float32
	FOV         float32 // vertical, degrees
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, fov, near, far float32) Camera {
	c := Camera{
		Up:        mgl32.Vec3{0, 1, 0},
		FOV:       fov,
		NearPlane: near,
		FarPlane:  far,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. A zero height is treated as one pixel.
func (c *Camera) SetViewport(width, height int) {
	c.AspectRatio = float32(width) / float32(max(height, 1))
}

func (c Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c Camera) ViewMatrix() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}
