package graphics

import "github.com/go-gl/gl/v4.1-core/gl"

// Surface is the default framebuffer of the current GL context
type Surface struct {
	width, height int
}

// SetSize records the framebuffer size and updates the GL viewport
func (s *Surface) SetSize(width, height int) {
	s.width, s.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}
