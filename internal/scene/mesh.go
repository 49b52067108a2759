package scene

import "github.com/go-gl/mathgl/mgl32"

// Material selects the shader a mesh is drawn with
type Material int

const (
	// MaterialNormal colors surfaces by their normal
	MaterialNormal Material = iota
	// MaterialFloor is a flat wireframe used for the debug floor
	MaterialFloor
)

func (m Material) String() string {
	switch m {
	case MaterialNormal:
		return "normal"
	case MaterialFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// MeshHandle is GPU-side geometry owned by a renderer
type MeshHandle interface {
	VertexCount() int
	Dispose()
}

// VisualMesh is a drawable instance of a mesh
type VisualMesh struct {
	Mesh     MeshHandle
	Material Material
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    float32
	Visible  bool
}

// NewVisualMesh returns a visible mesh at the origin with identity rotation
func NewVisualMesh(h MeshHandle, m Material, scale float32) *VisualMesh {
	return &VisualMesh{
		Mesh:     h,
		Material: m,
		Rotation: mgl32.QuatIdent(),
		Scale:    scale,
		Visible:  true,
	}
}

// ModelMatrix returns translate * rotate * scale
func (v *VisualMesh) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(v.Position.X(), v.Position.Y(), v.Position.Z()).
		Mul4(v.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(v.Scale, v.Scale, v.Scale))
}

// Dispose releases the GPU mesh. Safe to call twice.
func (v *VisualMesh) Dispose() {
	if v.Mesh == nil {
		return
	}
	v.Mesh.Dispose()
	v.Mesh = nil
}

// Surface is the pixel buffer a renderer draws into
type Surface interface {
	SetSize(width, height int)
	Size() (width, height int)
}
