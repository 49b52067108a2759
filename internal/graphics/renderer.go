package graphics

import (
	"errors"
	"fmt"

	"dropview/internal/geometry"
	"dropview/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader names, loaded as <name>.vert and <name>.frag from the shaders dir
const (
	NormalShader = "normal"
	FlatShader   = "flat"
	TextShader   = "text"
)

var floorColor = mgl32.Vec4{0.8, 0.8, 0.8, 0.6}

// Renderer draws visual meshes into the current GL context
type Renderer struct {
	surface    *Surface
	normal     *Shader
	flat       *Shader
	clearColor [4]float32
	meshes     map[*Mesh]struct{}
}

// NewRenderer loads the shaders from shadersDir and configures GL state.
// The GL context must be current on the calling goroutine.
func NewRenderer(shadersDir string, clearColor [4]float32) (*Renderer, error) {
	normal, err := loadShader(shadersDir, NormalShader)
	if err != nil {
		return nil, fmt.Errorf("could not load normal shader: %w", err)
	}
	flat, err := loadShader(shadersDir, FlatShader)
	if err != nil {
		normal.Delete()
		return nil, fmt.Errorf("could not load flat shader: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	// STL winding is not reliable, draw both sides
	gl.Disable(gl.CULL_FACE)

	return &Renderer{
		surface:    &Surface{},
		normal:     normal,
		flat:       flat,
		clearColor: clearColor,
		meshes:     make(map[*Mesh]struct{}),
	}, nil
}

func (r *Renderer) Surface() scene.Surface { return r.surface }

// NewMesh uploads g. The material is picked per draw from the VisualMesh.
func (r *Renderer) NewMesh(g *geometry.Geometry, _ scene.Material) (scene.MeshHandle, error) {
	if r.meshes == nil {
		return nil, errors.New("renderer disposed")
	}
	m := NewMesh(g)
	r.meshes[m] = struct{}{}
	return &trackedMesh{Mesh: m, owner: r}, nil
}

// Render clears the surface and draws every visible mesh from cam
func (r *Renderer) Render(meshes []*scene.VisualMesh, cam scene.Camera) {
	c := r.clearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	for _, vm := range meshes {
		if !vm.Visible || vm.Mesh == nil {
			continue
		}
		tm, ok := vm.Mesh.(*trackedMesh)
		if !ok {
			continue
		}
		switch vm.Material {
		case scene.MaterialFloor:
			r.drawWireframe(tm.Mesh, vm.ModelMatrix(), view, proj)
		default:
			r.drawNormal(tm.Mesh, vm.ModelMatrix(), view, proj)
		}
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawNormal(m *Mesh, model, view, proj mgl32.Mat4) {
	r.normal.Use()
	r.normal.SetMatrix4("model", model)
	r.normal.SetMatrix4("view", view)
	r.normal.SetMatrix4("proj", proj)
	m.draw()
}

func (r *Renderer) drawWireframe(m *Mesh, model, view, proj mgl32.Mat4) {
	r.flat.Use()
	r.flat.SetMatrix4("model", model)
	r.flat.SetMatrix4("view", view)
	r.flat.SetMatrix4("proj", proj)
	r.flat.SetVector4("color", floorColor)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	gl.LineWidth(1.0)
	m.draw()
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Disable(gl.BLEND)
}

// Dispose frees the shaders and any mesh not yet disposed by its owner
func (r *Renderer) Dispose() {
	for m := range r.meshes {
		m.Dispose()
	}
	r.meshes = nil
	r.normal.Delete()
	r.flat.Delete()
}

// trackedMesh lets the renderer free meshes its owner forgot about
type trackedMesh struct {
	*Mesh
	owner *Renderer
}

func (t *trackedMesh) Dispose() {
	if t.owner.meshes != nil {
		delete(t.owner.meshes, t.Mesh)
	}
	t.Mesh.Dispose()
}
