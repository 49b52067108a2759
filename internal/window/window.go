// Package window hosts the viewer in a GLFW window with an OpenGL 4.1 core context.
package window

import (
	"errors"
	"fmt"

	"dropview/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrClosed is returned when attaching to a window that has been destroyed
var ErrClosed = errors.New("window closed")

// Config describes the window to open
type Config struct {
	Width       int
	Height      int
	Title       string
	Transparent bool // request an alpha framebuffer so a transparent clear shows the desktop
}

// DefaultConfig returns a 900x600 window titled "dropview"
func DefaultConfig() Config {
	return Config{Width: 900, Height: 600, Title: "dropview", Transparent: true}
}

// Window is a GLFW window usable as a viewer container.
// All methods must be called from the main thread.
type Window struct {
	win      *glfw.Window
	resize   resizeListeners
	attached scene.Surface
	onKey    func(key glfw.Key, action glfw.Action)
	closed   bool
}

// New opens a window and makes its GL context current. glfw.Init must have been called.
func New(cfg Config) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if cfg.Transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("init gl: %w", err)
	}

	// Disable V-Sync; the host paces frames itself
	glfw.SwapInterval(0)

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resize.dispatch(width, height)
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if w.onKey != nil {
			w.onKey(key, action)
		}
	})
	return w, nil
}

// Attach sizes s to the framebuffer and makes it the window's surface
func (w *Window) Attach(s scene.Surface) error {
	if w.closed || w.win == nil {
		return ErrClosed
	}
	s.SetSize(w.Size())
	w.attached = s
	return nil
}

// Detach releases s if it is the attached surface
func (w *Window) Detach(s scene.Surface) {
	if w.attached == s {
		w.attached = nil
	}
}

// Attached returns the current surface, if any
func (w *Window) Attached() scene.Surface { return w.attached }

// Size returns the framebuffer size in pixels, or zero once closed
func (w *Window) Size() (width, height int) {
	if w.closed || w.win == nil {
		return 0, 0
	}
	return w.win.GetFramebufferSize()
}

// OnResize registers fn for framebuffer size changes
func (w *Window) OnResize(fn func(width, height int)) (remove func()) {
	return w.resize.add(fn)
}

// OnKey sets the key handler, replacing any previous one
func (w *Window) OnKey(fn func(key glfw.Key, action glfw.Action)) {
	w.onKey = fn
}

// ShouldClose reports whether the user asked to close the window
func (w *Window) ShouldClose() bool {
	return w.closed || w.win == nil || w.win.ShouldClose()
}

// RequestClose flags the window for closing at the end of the current frame
func (w *Window) RequestClose() {
	if w.win != nil && !w.closed {
		w.win.SetShouldClose(true)
	}
}

// SwapBuffers presents the frame
func (w *Window) SwapBuffers() {
	if w.win != nil && !w.closed {
		w.win.SwapBuffers()
	}
}

// Destroy closes the window. Later Attach calls fail with ErrClosed.
func (w *Window) Destroy() {
	if w.closed {
		return
	}
	w.closed = true
	w.attached = nil
	if w.win != nil {
		w.win.Destroy()
	}
}
