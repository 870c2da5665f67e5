package glyphquad

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/glyphquad/gfx"
)

// Renderer draws strings from a Table, one quad per glyph.
//
// It owns one vertex array and two dynamic buffers of one quad each
// (positions and texture coordinates). Both buffers are overwritten for
// every glyph; they never hold more than one quad.
//
// The table, viewport, device and shader manager are borrowed and must
// outlive the renderer. A Renderer is not safe for concurrent use.
type Renderer struct {
	table    *Table
	viewport *Viewport
	dev      gfx.Device
	shaders  gfx.ShaderManager
	cfg      rendererConfig

	vao    gfx.VertexArrayHandle
	posBuf gfx.BufferHandle
	uvBuf  gfx.BufferHandle

	// Staging for one quad, reused across glyphs.
	posData [gfx.QuadAttribBytes]byte
	uvData  [gfx.QuadAttribBytes]byte

	closed bool
}

// NewRenderer allocates the vertex array and buffers for drawing table
// and registers the position and texcoord attributes of gfx.ProgramText.
// Nothing is written into the buffers yet. On failure everything allocated
// so far is released.
func NewRenderer(table *Table, viewport *Viewport, dev gfx.Device, shaders gfx.ShaderManager, opts ...RendererOption) (*Renderer, error) {
	switch {
	case table == nil:
		return nil, errors.New("glyphquad: nil glyph table")
	case table.closed:
		return nil, ErrTableClosed
	case viewport == nil:
		return nil, ErrInvalidViewport
	case dev == nil || shaders == nil:
		return nil, ErrNilDevice
	}

	cfg := defaultRendererConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{
		table:    table,
		viewport: viewport,
		dev:      dev,
		shaders:  shaders,
		cfg:      cfg,
	}
	if err := r.allocate(); err != nil {
		r.release()
		return nil, err
	}

	Logger().Debug("glyphquad: renderer allocated",
		"vao", r.vao,
		"bufferBytes", gfx.QuadAttribBytes,
		"unknownGlyphs", cfg.unknown.String())
	return r, nil
}

func (r *Renderer) allocate() error {
	var err error
	if r.vao, err = r.dev.AllocateVertexArray(); err != nil {
		return fmt.Errorf("glyphquad: allocate vertex array: %w", err)
	}
	if r.posBuf, err = r.dev.AllocateDynamicBuffer(gfx.QuadAttribBytes); err != nil {
		return fmt.Errorf("glyphquad: allocate position buffer: %w", err)
	}
	if r.uvBuf, err = r.dev.AllocateDynamicBuffer(gfx.QuadAttribBytes); err != nil {
		return fmt.Errorf("glyphquad: allocate texcoord buffer: %w", err)
	}
	if err = r.shaders.ConfigureVertexAttribute(r.vao, r.posBuf, gfx.ProgramText, gfx.AttribPosition); err != nil {
		return fmt.Errorf("glyphquad: configure %s attribute: %w", gfx.AttribPosition, err)
	}
	if err = r.shaders.ConfigureVertexAttribute(r.vao, r.uvBuf, gfx.ProgramText, gfx.AttribTexCoord); err != nil {
		return fmt.Errorf("glyphquad: configure %s attribute: %w", gfx.AttribTexCoord, err)
	}
	return nil
}

func (r *Renderer) release() {
	if r.uvBuf != 0 {
		r.dev.DeleteBuffer(r.uvBuf)
		r.uvBuf = 0
	}
	if r.posBuf != 0 {
		r.dev.DeleteBuffer(r.posBuf)
		r.posBuf = 0
	}
	if r.vao != 0 {
		r.dev.DeleteVertexArray(r.vao)
		r.vao = 0
	}
}

// Close releases the vertex array and buffers. Calling Close more than
// once is a no-op. The table is not closed.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.release()
	return nil
}

// Table returns the glyph table the renderer draws from.
func (r *Renderer) Table() *Table { return r.table }

// Render draws text with the given anchor, uniform scale and color.
// It is shorthand for Draw.
func (r *Renderer) Render(text string, anchor Anchor, scale float64, c color.Color) error {
	return r.Draw(LayoutRequest{Text: text, Scale: scale, Anchor: anchor, Color: c})
}

// Draw draws req.Text, one six-vertex draw call per glyph with a visible
// bitmap. Depth testing is disabled for the call and its previous state
// restored on every exit path. On return no vertex array or texture is
// bound and no program is in use.
//
// Unknown characters are detected while measuring, before any draw call.
func (r *Renderer) Draw(req LayoutRequest) error {
	if err := r.check(req.Anchor); err != nil {
		return err
	}

	depth := r.dev.DepthTest()
	r.dev.SetDepthTest(false)
	defer r.dev.SetDepthTest(depth)

	if err := r.shaders.UseProgram(gfx.ProgramText); err != nil {
		return fmt.Errorf("glyphquad: use %s program: %w", gfx.ProgramText, err)
	}
	defer r.shaders.StopUsingProgram()

	if err := r.shaders.SetUniform(gfx.ProgramText, gfx.UniformColor, gfx.ColorVec4(req.Color)); err != nil {
		return fmt.Errorf("glyphquad: set %s: %w", gfx.UniformColor, err)
	}
	if err := r.shaders.SetUniform(gfx.ProgramText, gfx.UniformProjection, r.space(req.Anchor.Mode).projection); err != nil {
		return fmt.Errorf("glyphquad: set %s: %w", gfx.UniformProjection, err)
	}

	r.dev.BindVertexArray(r.vao)
	defer func() {
		r.dev.BindVertexArray(0)
		r.dev.BindTexture(0)
	}()

	return r.layout(req, r.drawQuad)
}

// drawQuad overwrites both attribute buffers with q and draws it.
func (r *Renderer) drawQuad(_ rune, g Glyph, q *[gfx.QuadVertices]Vertex) error {
	for i, v := range q {
		off := i * gfx.AttribComponents * 4
		gfx.PutFloat32s(r.posData[off:], v.X, v.Y)
		gfx.PutFloat32s(r.uvData[off:], v.U, v.V)
	}

	r.dev.BindTexture(g.Texture)
	if err := r.dev.UpdateBuffer(r.posBuf, 0, r.posData[:]); err != nil {
		return fmt.Errorf("glyphquad: update position buffer: %w", err)
	}
	if err := r.dev.UpdateBuffer(r.uvBuf, 0, r.uvData[:]); err != nil {
		return fmt.Errorf("glyphquad: update texcoord buffer: %w", err)
	}
	if err := r.dev.DrawTriangles(gfx.QuadVertices); err != nil {
		return fmt.Errorf("glyphquad: draw: %w", err)
	}
	return nil
}
