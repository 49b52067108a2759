package graphics

import (
	"dropview/internal/geometry"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Mesh is an uploaded triangle list with interleaved position and normal
type Mesh struct {
	vao   uint32
	vbo   uint32
	count int32
}

// NewMesh uploads g. An empty geometry yields a mesh that draws nothing.
func NewMesh(g *geometry.Geometry) *Mesh {
	data := g.Interleaved()
	m := &Mesh{count: int32(g.VertexCount())}
	if len(data) == 0 {
		return m
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	stride := int32(geometry.FloatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m
}

func (m *Mesh) VertexCount() int { return int(m.count) }

func (m *Mesh) draw() {
	if m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.count)
}

// Dispose cleans up OpenGL resources
func (m *Mesh) Dispose() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
}
