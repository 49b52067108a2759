package graphics

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph describes a single character's placement and metrics within the atlas
type Glyph struct {
	// Pixel coordinates of the glyph in the atlas (top-left origin)
	AtlasX float32
	AtlasY float32
	Width  float32
	Height float32
	// Offset from the pen position on the baseline
	BearingX float32
	BearingY float32
	Advance  int
}

// Atlas is a baked single-channel glyph sheet
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
}

const atlasWidth = 512

// BakeAtlas rasterizes printable ASCII from a TrueType/OpenType font at the given pixel size.
func BakeAtlas(fontData []byte, fontPixels int) (*Atlas, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(fontPixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	const padding = 1
	glyphs := make(map[rune]Glyph)
	type placed struct {
		r    rune
		dst  image.Rectangle
		mask image.Image
		mp   image.Point
	}
	var pending []placed

	// Pack rows left to right, then size the sheet to fit
	offsetX, offsetY, rowHeight := 0, 0, 0
	for r := rune(32); r <= 126; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			BearingX: float32(dr.Min.X),
			BearingY: float32(-dr.Min.Y),
			Advance:  int(math.Round(float64(advance) / 64.0)),
		}
		gw, gh := dr.Dx(), dr.Dy()
		if mask == nil || gw == 0 || gh == 0 {
			// space still needs its advance
			glyphs[r] = g
			continue
		}
		if offsetX+gw > atlasWidth {
			offsetX = 0
			offsetY += rowHeight + padding
			rowHeight = 0
		}
		g.AtlasX, g.AtlasY = float32(offsetX), float32(offsetY)
		g.Width, g.Height = float32(gw), float32(gh)
		glyphs[r] = g
		pending = append(pending, placed{r: r, dst: image.Rect(offsetX, offsetY, offsetX+gw, offsetY+gh), mask: mask, mp: maskp})

		offsetX += gw + padding
		rowHeight = max(rowHeight, gh)
	}

	img := image.NewAlpha(image.Rect(0, 0, atlasWidth, offsetY+rowHeight+padding))
	for _, p := range pending {
		draw.Draw(img, p.dst, p.mask, p.mp, draw.Src)
	}
	return &Atlas{Image: img, Glyphs: glyphs}, nil
}

// Layout builds two triangles per character as x, y, u, v. Characters missing
// from the atlas advance like a space.
func (a *Atlas) Layout(text string, x, y, scale float32) []float32 {
	w := float32(a.Image.Rect.Dx())
	h := float32(a.Image.Rect.Dy())
	out := make([]float32, 0, len(text)*6*4)
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			x += float32(a.Glyphs[' '].Advance) * scale
			continue
		}
		if g.Width > 0 {
			x0 := x + g.BearingX*scale
			y0 := y - g.BearingY*scale
			x1, y1 := x0+g.Width*scale, y0+g.Height*scale
			u0, v0 := g.AtlasX/w, g.AtlasY/h
			u1, v1 := (g.AtlasX+g.Width)/w, (g.AtlasY+g.Height)/h
			out = append(out,
				x0, y1, u0, v1,
				x0, y0, u0, v0,
				x1, y0, u1, v0,
				x0, y1, u0, v1,
				x1, y0, u1, v0,
				x1, y1, u1, v1,
			)
		}
		x += float32(g.Advance) * scale
	}
	return out
}

// TextOverlay draws screen-space text in pixel coordinates, origin top-left
type TextOverlay struct {
	atlas      *Atlas
	shader     *Shader
	texture    uint32
	vao        uint32
	vbo        uint32
	projection mgl32.Mat4
}

// NewTextOverlay bakes the Go Regular font and loads the text shader from shadersDir
func NewTextOverlay(shadersDir string, fontPixels int) (*TextOverlay, error) {
	atlas, err := BakeAtlas(goregular.TTF, fontPixels)
	if err != nil {
		return nil, err
	}
	shader, err := loadShader(shadersDir, TextShader)
	if err != nil {
		return nil, fmt.Errorf("could not load text shader: %w", err)
	}
	t := &TextOverlay{atlas: atlas, shader: shader}
	t.initGL()
	return t, nil
}

func (t *TextOverlay) initGL() {
	img := t.atlas.Image
	gl.GenTextures(1, &t.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	// Ensure tight byte alignment for single-channel upload
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &t.vao)
	gl.GenBuffers(1, &t.vbo)
	gl.BindVertexArray(t.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, t.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// SetViewport sets the pixel size text is laid out against
func (t *TextOverlay) SetViewport(width, height int) {
	t.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// RenderLines draws lines starting at (x, y), each lineStep pixels below the previous
func (t *TextOverlay) RenderLines(lines []string, x, y, lineStep float32, color mgl32.Vec3) {
	var verts []float32
	for _, line := range lines {
		verts = append(verts, t.atlas.Layout(line, x, y, 1)...)
		y += lineStep
	}
	if len(verts) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	t.shader.Use()
	t.shader.SetVector3("textColor", color)
	t.shader.SetMatrix4("projection", t.projection)
	t.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.BindVertexArray(t.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, t.vbo)

	// orphan the buffer to avoid stalls on dynamic updates
	size := len(verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(verts))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(verts)/4))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Dispose cleans up OpenGL resources
func (t *TextOverlay) Dispose() {
	if t.vao != 0 {
		gl.DeleteVertexArrays(1, &t.vao)
	}
	if t.vbo != 0 {
		gl.DeleteBuffers(1, &t.vbo)
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
	}
	t.shader.Delete()
}
