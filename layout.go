package glyphquad

import (
	"fmt"

	"github.com/gogpu/glyphquad/gfx"
)

// Vertex is one corner of a glyph quad: position and texture coordinate.
type Vertex struct {
	X, Y float32
	U, V float32
}

// Quad is the geometry of one glyph: two triangles sampling Texture.
type Quad struct {
	Code     rune
	Texture  gfx.TextureHandle
	Vertices [gfx.QuadVertices]Vertex
}

// quadVertices returns two triangles covering the rectangle with
// bottom-left corner (x, y). Bitmaps are stored top-down, so v is flipped:
// the top edge samples row 0.
func quadVertices(x, y, w, h float32) [gfx.QuadVertices]Vertex {
	return [gfx.QuadVertices]Vertex{
		{x, y + h, 0, 0},
		{x, y, 0, 1},
		{x + w, y, 1, 1},
		{x, y + h, 0, 0},
		{x + w, y, 1, 1},
		{x + w, y + h, 1, 0},
	}
}

// space holds the pixel conversion factors and projection of one anchor mode.
type space struct {
	fx, fy     float64
	projection gfx.Mat4
}

func (r *Renderer) space(mode AnchorMode) space {
	w, h := r.viewport.Width, r.viewport.Height
	if mode == AnchorPixelOrigin {
		return space{fx: 1, fy: 1, projection: gfx.Ortho(0, float32(w), 0, float32(h))}
	}
	return space{fx: 2 / float64(w), fy: 2 / float64(h), projection: gfx.Identity()}
}

// check validates renderer state and the viewport for one layout call.
func (r *Renderer) check(a Anchor) error {
	switch {
	case r.closed:
		return ErrRendererClosed
	case r.table.closed:
		return ErrTableClosed
	case !r.viewport.valid():
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, r.viewport.Width, r.viewport.Height)
	case a.Mode > AnchorPixelOrigin:
		return fmt.Errorf("glyphquad: unknown anchor mode %d", a.Mode)
	}
	return nil
}

// lookup returns the glyph for c at byte offset off. skip reports that
// the character is unknown and ignored under UnknownGlyphSkip.
func (r *Renderer) lookup(c rune, off int) (g Glyph, skip bool, err error) {
	if g, ok := r.table.Glyph(c); ok {
		return g, false, nil
	}
	if r.cfg.unknown == UnknownGlyphSkip {
		return Glyph{}, true, nil
	}
	return Glyph{}, false, &UnknownGlyphError{Code: c, Offset: off}
}

// MeasurePixels returns the pixel width and height of text at scale:
// the sum of floored advances and the tallest bitmap, both times scale.
func (r *Renderer) MeasurePixels(text string, scale float64) (w, h float64, err error) {
	if err := r.check(Anchor{}); err != nil {
		return 0, 0, err
	}
	return r.measurePixels(text, scale)
}

func (r *Renderer) measurePixels(text string, scale float64) (w, h float64, err error) {
	for i, c := range text {
		g, skip, err := r.lookup(c, i)
		if err != nil {
			return 0, 0, err
		}
		if skip {
			continue
		}
		w += float64(g.AdvancePixels()) * scale
		h = max(h, float64(g.Size.Y)*scale)
	}
	return w, h, nil
}

// Measure returns the dimensions of text at scale in normalized device
// coordinates of the current viewport (pixel*2/dimension). It has no side
// effects.
func (r *Renderer) Measure(text string, scale float64) (w, h float64, err error) {
	pw, ph, err := r.MeasurePixels(text, scale)
	if err != nil {
		return 0, 0, err
	}
	return pw * 2 / float64(r.viewport.Width), ph * 2 / float64(r.viewport.Height), nil
}

// PenStart returns the pen position of the first glyph of req: the anchor
// minus half the measured size when centered, the anchor itself otherwise.
func (r *Renderer) PenStart(req LayoutRequest) (x, y float64, err error) {
	if err := r.check(req.Anchor); err != nil {
		return 0, 0, err
	}
	if req.Anchor.Mode == AnchorPixelOrigin {
		if _, _, err := r.measurePixels(req.Text, req.Scale); err != nil {
			return 0, 0, err
		}
		return req.Anchor.X, req.Anchor.Y, nil
	}
	w, h, err := r.Measure(req.Text, req.Scale)
	if err != nil {
		return 0, 0, err
	}
	return req.Anchor.X - w/2, req.Anchor.Y - h/2, nil
}

// AppendQuads appends the quads of req to dst without touching the device.
// Glyphs without a visible bitmap advance the pen but produce no quad.
func (r *Renderer) AppendQuads(dst []Quad, req LayoutRequest) ([]Quad, error) {
	err := r.layout(req, func(code rune, g Glyph, q *[gfx.QuadVertices]Vertex) error {
		dst = append(dst, Quad{Code: code, Texture: g.Texture, Vertices: *q})
		return nil
	})
	return dst, err
}

// layout walks req.Text left to right and calls emit with the quad of
// every visible glyph. The whole string is measured first, so an unknown
// character fails the call before emit runs.
func (r *Renderer) layout(req LayoutRequest, emit func(rune, Glyph, *[gfx.QuadVertices]Vertex) error) error {
	penX, penY, err := r.PenStart(req)
	if err != nil {
		return err
	}

	sp := r.space(req.Anchor.Mode)
	s := req.Scale
	var quad [gfx.QuadVertices]Vertex
	for i, c := range req.Text {
		g, skip, err := r.lookup(c, i)
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		if g.Visible() {
			x := penX + float64(g.Bearing.X)*s*sp.fx
			y := penY - float64(g.Underhang())*s*sp.fy
			w := float64(g.Size.X) * s * sp.fx
			h := float64(g.Size.Y) * s * sp.fy
			quad = quadVertices(float32(x), float32(y), float32(w), float32(h))
			if err := emit(c, g, &quad); err != nil {
				return err
			}
		}

		penX += float64(g.AdvancePixels()) * s * sp.fx
	}
	return nil
}
