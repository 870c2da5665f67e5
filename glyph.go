package glyphquad

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphquad/gfx"
)

// NumCodes is the number of character codes a Table covers: 0..127.
const NumCodes = 128

// Glyph is the rasterized record for one character code.
type Glyph struct {
	// Texture holds the single-channel bitmap. Owned by the Table.
	Texture gfx.TextureHandle

	// Size is the bitmap width and height in pixels. It is 0x0 for blank
	// glyphs such as a space.
	Size image.Point

	// Bearing is the offset from the pen to the bitmap's top-left corner.
	// Bearing.Y is measured upward from the baseline.
	Bearing image.Point

	// Advance is the horizontal pen displacement in 1/64 pixel units.
	Advance fixed.Int26_6
}

// AdvancePixels returns the advance truncated to whole pixels (advance >> 6).
func (g Glyph) AdvancePixels() int {
	return g.Advance.Floor()
}

// Underhang returns how far the bitmap extends below the baseline.
func (g Glyph) Underhang() int {
	return g.Size.Y - g.Bearing.Y
}

// Visible reports whether the glyph has a bitmap with non-zero area.
func (g Glyph) Visible() bool {
	return g.Size.X > 0 && g.Size.Y > 0
}

// Viewport is the current render target size in pixels. Renderers hold a
// pointer and read it on every call, so resizing takes effect on the next
// Measure or Render.
type Viewport struct {
	Width, Height int
}

func (v *Viewport) valid() bool {
	return v != nil && v.Width > 0 && v.Height > 0
}
