package geometry

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDegenerate is returned when a geometry has no usable extent
var ErrDegenerate = errors.New("degenerate geometry")

// FloatsPerVertex is the stride of Interleaved: position then normal
const FloatsPerVertex = 6

// Geometry is an unindexed triangle list.
// Positions and Normals hold three floats per vertex and have the same length.
type Geometry struct {
	Positions []float32
	Normals   []float32
}

// Box is an axis-aligned bounding box
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the extent along each axis
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// VertexCount returns the number of vertices
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// BoundingBox returns the axis-aligned bounds of all positions.
// An empty geometry yields the zero box.
func (g *Geometry) BoundingBox() Box {
	if g.VertexCount() == 0 {
		return Box{}
	}
	inf := float32(math.Inf(1))
	b := Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
	for i := 0; i+2 < len(g.Positions); i += 3 {
		for a := range 3 {
			v := g.Positions[i+a]
			b.Min[a] = min(b.Min[a], v)
			b.Max[a] = max(b.Max[a], v)
		}
	}
	return b
}

// Center translates the geometry so its bounding box is centered on the origin
func (g *Geometry) Center() {
	c := g.BoundingBox().Center()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		g.Positions[i] -= c[0]
		g.Positions[i+1] -= c[1]
		g.Positions[i+2] -= c[2]
	}
}

// Clone returns a deep copy
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Positions: append([]float32(nil), g.Positions...),
		Normals:   append([]float32(nil), g.Normals...),
	}
}

// Interleaved packs positions and normals as x,y,z,nx,ny,nz per vertex.
// Missing normals are written as zero.
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	out := make([]float32, 0, n*FloatsPerVertex)
	for v := range n {
		out = append(out, g.Positions[v*3:v*3+3]...)
		if v*3+2 < len(g.Normals) {
			out = append(out, g.Normals[v*3:v*3+3]...)
		} else {
			out = append(out, 0, 0, 0)
		}
	}
	return out
}

// ComputeNormals fills Normals with the face normal of each triangle
func (g *Geometry) ComputeNormals() {
	g.Normals = make([]float32, len(g.Positions))
	for i := 0; i+8 < len(g.Positions); i += 9 {
		a := mgl32.Vec3{g.Positions[i], g.Positions[i+1], g.Positions[i+2]}
		b := mgl32.Vec3{g.Positions[i+3], g.Positions[i+4], g.Positions[i+5]}
		c := mgl32.Vec3{g.Positions[i+6], g.Positions[i+7], g.Positions[i+8]}
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		for k := range 3 {
			copy(g.Normals[i+k*3:i+k*3+3], n[:])
		}
	}
}

// ScaleFor returns the uniform factor that makes the largest axis of size equal target.
// It fails with ErrDegenerate when that axis is zero, negative or not finite.
func ScaleFor(size mgl32.Vec3, target float32) (float32, error) {
	m := max(size[0], size[1], size[2])
	if !(m > 0) || math.IsInf(float64(m), 0) {
		return 0, ErrDegenerate
	}
	s := target / m
	if math.IsInf(float64(s), 0) || math.IsNaN(float64(s)) {
		return 0, ErrDegenerate
	}
	return s, nil
}

// Normalize centers the geometry and returns the display scale that fits its
// largest axis to target. The geometry itself is not scaled.
func (g *Geometry) Normalize(target float32) (float32, error) {
	size := g.BoundingBox().Size()
	s, err := ScaleFor(size, target)
	if err != nil {
		return 0, err
	}
	g.Center()
	return s, nil
}
