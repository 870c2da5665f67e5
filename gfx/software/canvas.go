// Package software implements gfx.Device and gfx.ShaderManager on the CPU,
// drawing into an *image.RGBA.
//
// Only the text program is supported. Each draw is interpreted as a list
// of axis-aligned quads of six vertices; the bound glyph texture is tinted
// with the textColor uniform and composited with golang.org/x/image/draw.
// Clip space is y-up, so NDC y=1 maps to image row 0.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/glyphquad/gfx"
)

var (
	// ErrUnknownHandle is returned for a handle the canvas never issued.
	ErrUnknownHandle = errors.New("software: unknown handle")

	// ErrNoProgram is returned when drawing without the text program.
	ErrNoProgram = errors.New("software: text program not in use")
)

type texture struct {
	img    *image.Alpha
	params gfx.SamplerParams

	// tint caches the texture colored with the last color it was drawn with.
	tint      *image.RGBA
	tintColor gfx.Vec4
}

// Canvas is a CPU render target. It is not safe for concurrent use.
type Canvas struct {
	dst *image.RGBA

	next     uint32
	textures map[gfx.TextureHandle]*texture
	buffers  map[gfx.BufferHandle][]byte
	vaos     map[gfx.VertexArrayHandle]map[string]gfx.BufferHandle

	boundVAO gfx.VertexArrayHandle
	boundTex gfx.TextureHandle
	depth    bool

	program    gfx.ProgramKind
	color      gfx.Vec4
	projection gfx.Mat4

	draws int
}

var (
	_ gfx.Device        = (*Canvas)(nil)
	_ gfx.ShaderManager = (*Canvas)(nil)
)

// New creates a transparent width x height canvas.
func New(width, height int) *Canvas {
	return &Canvas{
		dst:        image.NewRGBA(image.Rect(0, 0, width, height)),
		textures:   make(map[gfx.TextureHandle]*texture),
		buffers:    make(map[gfx.BufferHandle][]byte),
		vaos:       make(map[gfx.VertexArrayHandle]map[string]gfx.BufferHandle),
		depth:      true,
		color:      gfx.Vec4{1, 1, 1, 1},
		projection: gfx.Identity(),
	}
}

// Image returns the render target.
func (c *Canvas) Image() *image.RGBA { return c.dst }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dst.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dst.Bounds().Dy() }

// Draws returns the number of successful DrawTriangles calls.
func (c *Canvas) Draws() int { return c.draws }

// Clear fills the canvas with col.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.dst)
}

func (c *Canvas) handle() uint32 {
	c.next++
	return c.next
}

// UploadTexture implements gfx.Device.
func (c *Canvas) UploadTexture(width, height int, pix []byte, params gfx.SamplerParams) (gfx.TextureHandle, error) {
	if width < 0 || height < 0 || len(pix) < width*height {
		return 0, fmt.Errorf("software: texture %dx%d with %d bytes", width, height, len(pix))
	}
	img := image.NewAlpha(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	h := gfx.TextureHandle(c.handle())
	c.textures[h] = &texture{img: img, params: params}
	return h, nil
}

// DeleteTexture implements gfx.Device.
func (c *Canvas) DeleteTexture(tex gfx.TextureHandle) {
	delete(c.textures, tex)
}

// AllocateVertexArray implements gfx.Device.
func (c *Canvas) AllocateVertexArray() (gfx.VertexArrayHandle, error) {
	h := gfx.VertexArrayHandle(c.handle())
	c.vaos[h] = make(map[string]gfx.BufferHandle, 2)
	return h, nil
}

// DeleteVertexArray implements gfx.Device.
func (c *Canvas) DeleteVertexArray(vao gfx.VertexArrayHandle) {
	delete(c.vaos, vao)
}

// AllocateDynamicBuffer implements gfx.Device.
func (c *Canvas) AllocateDynamicBuffer(size int) (gfx.BufferHandle, error) {
	if size <= 0 {
		return 0, fmt.Errorf("software: invalid buffer size %d", size)
	}
	h := gfx.BufferHandle(c.handle())
	c.buffers[h] = make([]byte, size)
	return h, nil
}

// UpdateBuffer implements gfx.Device.
func (c *Canvas) UpdateBuffer(buf gfx.BufferHandle, offset int, data []byte) error {
	b, ok := c.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if offset < 0 || offset+len(data) > len(b) {
		return fmt.Errorf("software: %d bytes at %d overflow %d-byte buffer", len(data), offset, len(b))
	}
	copy(b[offset:], data)
	return nil
}

// DeleteBuffer implements gfx.Device.
func (c *Canvas) DeleteBuffer(buf gfx.BufferHandle) {
	delete(c.buffers, buf)
}

// BindVertexArray implements gfx.Device.
func (c *Canvas) BindVertexArray(vao gfx.VertexArrayHandle) { c.boundVAO = vao }

// BindTexture implements gfx.Device.
func (c *Canvas) BindTexture(tex gfx.TextureHandle) { c.boundTex = tex }

// SetDepthTest implements gfx.Device. The canvas has no depth buffer, so
// the state is only tracked.
func (c *Canvas) SetDepthTest(enabled bool) { c.depth = enabled }

// DepthTest implements gfx.Device.
func (c *Canvas) DepthTest() bool { return c.depth }

// UseProgram implements gfx.ShaderManager.
func (c *Canvas) UseProgram(kind gfx.ProgramKind) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("software: unsupported program %v", kind)
	}
	c.program = kind
	return nil
}

// SetUniform implements gfx.ShaderManager.
func (c *Canvas) SetUniform(kind gfx.ProgramKind, name string, value gfx.Uniform) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("software: unsupported program %v", kind)
	}
	switch name {
	case gfx.UniformColor:
		v, ok := value.(gfx.Vec4)
		if !ok {
			return fmt.Errorf("software: %s must be Vec4, got %T", name, value)
		}
		c.color = v
	case gfx.UniformProjection:
		m, ok := value.(gfx.Mat4)
		if !ok {
			return fmt.Errorf("software: %s must be Mat4, got %T", name, value)
		}
		c.projection = m
	default:
		return fmt.Errorf("software: text program has no uniform %q", name)
	}
	return nil
}

// ConfigureVertexAttribute implements gfx.ShaderManager.
func (c *Canvas) ConfigureVertexAttribute(vao gfx.VertexArrayHandle, buf gfx.BufferHandle, kind gfx.ProgramKind, attribute string) error {
	attrs, ok := c.vaos[vao]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	if _, ok := c.buffers[buf]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if attribute != gfx.AttribPosition && attribute != gfx.AttribTexCoord {
		return fmt.Errorf("software: %v program has no attribute %q", kind, attribute)
	}
	attrs[attribute] = buf
	return nil
}

// StopUsingProgram implements gfx.ShaderManager.
func (c *Canvas) StopUsingProgram() { c.program = 0 }

// DrawTriangles implements gfx.Device. Every six vertices form one
// axis-aligned textured quad.
func (c *Canvas) DrawTriangles(vertexCount int) error {
	if c.program != gfx.ProgramText {
		return ErrNoProgram
	}
	attrs, ok := c.vaos[c.boundVAO]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, c.boundVAO)
	}
	tex, ok := c.textures[c.boundTex]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownHandle, c.boundTex)
	}
	pos := gfx.Float32s(c.buffers[attrs[gfx.AttribPosition]])
	uv := gfx.Float32s(c.buffers[attrs[gfx.AttribTexCoord]])
	if n := vertexCount * gfx.AttribComponents; n > len(pos) || n > len(uv) {
		return fmt.Errorf("software: %d vertices exceed bound buffers", vertexCount)
	}

	for q := 0; q+gfx.QuadVertices <= vertexCount; q += gfx.QuadVertices {
		c.drawQuad(tex, pos[q*2:], uv[q*2:])
	}
	c.draws++
	return nil
}

// drawQuad maps the texture onto the quad spanned by vertices 1 and 5,
// the opposite corners of the two triangles.
func (c *Canvas) drawQuad(tex *texture, pos, uv []float32) {
	b := tex.img.Bounds()
	if b.Empty() {
		return
	}
	tw, th := float64(b.Dx()), float64(b.Dy())

	ax, ay := c.toPixel(pos[2], pos[3])
	bx, by := c.toPixel(pos[10], pos[11])
	sax, say := float64(uv[2])*tw, float64(uv[3])*th
	sbx, sby := float64(uv[10])*tw, float64(uv[11])*th
	if sbx == sax || sby == say {
		return
	}

	kx := (bx - ax) / (sbx - sax)
	ky := (by - ay) / (sby - say)
	s2d := f64.Aff3{
		kx, 0, ax - kx*sax,
		0, ky, ay - ky*say,
	}

	interp := draw.Interpolator(draw.BiLinear)
	if tex.params.MagFilter == gfx.FilterNearest {
		interp = draw.NearestNeighbor
	}
	interp.Transform(c.dst, s2d, c.tinted(tex), b, draw.Over, nil)
}

// toPixel projects a vertex position and maps clip space to image pixels.
func (c *Canvas) toPixel(x, y float32) (float64, float64) {
	cx, cy := c.projection.TransformPoint(x, y)
	w, h := float64(c.Width()), float64(c.Height())
	return (float64(cx) + 1) / 2 * w, (1 - float64(cy)) / 2 * h
}

// tinted returns tex as premultiplied RGBA in the current text color.
func (c *Canvas) tinted(tex *texture) *image.RGBA {
	if tex.tint != nil && tex.tintColor == c.color {
		return tex.tint
	}
	b := tex.img.Bounds()
	if tex.tint == nil {
		tex.tint = image.NewRGBA(b)
	}
	r, g, bl, a := c.color[0], c.color[1], c.color[2], c.color[3]
	for i, cov := range tex.img.Pix {
		alpha := float32(cov) / 255 * a
		p := tex.tint.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = uint8(r*alpha*255 + 0.5)
		p[1] = uint8(g*alpha*255 + 0.5)
		p[2] = uint8(bl*alpha*255 + 0.5)
		p[3] = uint8(alpha*255 + 0.5)
	}
	tex.tintColor = c.color
	return tex.tint
}
