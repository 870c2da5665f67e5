package glyphquad

import (
	"fmt"
	"image"

	"golang.org/x/text/unicode/runenames"

	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx"
)

// Table maps character codes 0..127 to rasterized glyphs. Each glyph owns
// one single-channel texture on the device the table was built with.
//
// A Table is immutable after BuildTable returns. Codes that failed to
// rasterize are absent; see Warnings.
type Table struct {
	dev         gfx.Device
	glyphs      [NumCodes]Glyph
	present     [NumCodes]bool
	count       int
	pixelHeight int
	fontName    string
	warnings    []*GlyphRasterizationWarning
	closed      bool
}

// BuildTable rasterizes codes 0..127 of the font in res at pixelHeight
// pixels per em and uploads each glyph as its own texture on dev.
//
// Failures to open the backend or the font are returned as *FontLoadError.
// A glyph that fails to rasterize is omitted and reported in Warnings.
// A texture upload failure is fatal: textures uploaded so far are deleted.
// The backend face and library are released before BuildTable returns.
func BuildTable(dev gfx.Device, res fontraster.Resource, pixelHeight int, opts ...TableOption) (t *Table, err error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if pixelHeight <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPixelHeight, pixelHeight)
	}

	cfg := defaultTableConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	backend := cfg.backend
	if backend == nil {
		backend, err = fontraster.Open(cfg.rasterizer)
		if err != nil {
			return nil, &FontLoadError{Kind: ErrFontBackendInit, Resource: res.String(), Err: err}
		}
	}

	lib, err := backend.Init()
	if err != nil {
		return nil, &FontLoadError{Kind: ErrFontBackendInit, Resource: res.String(), Err: err}
	}
	defer func() {
		if rerr := lib.Release(); rerr != nil {
			Logger().Warn("glyphquad: font library release failed", "err", rerr)
		}
	}()

	if res.IsEmpty() {
		return nil, &FontLoadError{Kind: ErrFontResource, Err: fontraster.ErrEmptyResource}
	}
	face, err := lib.LoadFace(res)
	if err != nil {
		return nil, &FontLoadError{Kind: ErrFontResource, Resource: res.String(), Err: err}
	}
	defer func() {
		if rerr := face.Release(); rerr != nil {
			Logger().Warn("glyphquad: font face release failed", "err", rerr)
		}
	}()

	if err := face.SetPixelHeight(pixelHeight); err != nil {
		return nil, &FontLoadError{Kind: ErrFontResource, Resource: res.String(), Err: err}
	}

	t = &Table{
		dev:         dev,
		pixelHeight: pixelHeight,
		fontName:    face.Name(),
	}
	for code := rune(0); code < NumCodes; code++ {
		bmp, err := face.RenderGlyph(code)
		if err == nil && len(bmp.Pix) < bmp.Width*bmp.Height {
			err = fmt.Errorf("bitmap has %d bytes, want %d", len(bmp.Pix), bmp.Width*bmp.Height)
		}
		if err != nil {
			t.warn(code, err)
			continue
		}

		tex, err := dev.UploadTexture(bmp.Width, bmp.Height, bmp.Pix, cfg.sampler)
		if err != nil {
			t.release()
			return nil, fmt.Errorf("glyphquad: upload glyph %U (%dx%d): %w", code, bmp.Width, bmp.Height, err)
		}

		t.glyphs[code] = Glyph{
			Texture: tex,
			Size:    image.Pt(bmp.Width, bmp.Height),
			Bearing: image.Pt(bmp.Left, bmp.Top),
			Advance: bmp.Advance,
		}
		t.present[code] = true
		t.count++
	}

	Logger().Debug("glyphquad: glyph table built",
		"font", t.fontName,
		"resource", res.String(),
		"pixelHeight", pixelHeight,
		"glyphs", t.count,
		"warnings", len(t.warnings))
	return t, nil
}

func (t *Table) warn(code rune, err error) {
	w := &GlyphRasterizationWarning{Code: code, Err: err}
	t.warnings = append(t.warnings, w)
	Logger().Warn("glyphquad: glyph not rasterized",
		"code", fmt.Sprintf("%U", code),
		"name", runenames.Name(code),
		"err", err)
}

// Glyph returns the record for r. It reports false for codes outside
// 0..127, codes that failed to rasterize, and after Close.
func (t *Table) Glyph(r rune) (Glyph, bool) {
	if t.closed || r < 0 || r >= NumCodes || !t.present[r] {
		return Glyph{}, false
	}
	return t.glyphs[r], true
}

// Has reports whether r is in the table.
func (t *Table) Has(r rune) bool {
	_, ok := t.Glyph(r)
	return ok
}

// Len returns the number of glyphs in the table.
func (t *Table) Len() int {
	if t.closed {
		return 0
	}
	return t.count
}

// PixelHeight returns the pixel height the glyphs were rasterized at.
func (t *Table) PixelHeight() int { return t.pixelHeight }

// FontName returns the font family name reported by the rasterizer.
func (t *Table) FontName() string { return t.fontName }

// Warnings returns the per-glyph rasterization failures, in code order.
func (t *Table) Warnings() []*GlyphRasterizationWarning { return t.warnings }

// Closed reports whether Close has been called.
func (t *Table) Closed() bool { return t.closed }

// Close deletes every glyph texture. Calling Close more than once is a no-op.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.release()
	Logger().Debug("glyphquad: glyph table released", "font", t.fontName, "pixelHeight", t.pixelHeight)
	return nil
}

func (t *Table) release() {
	for code := range t.glyphs {
		if t.present[code] {
			t.dev.DeleteTexture(t.glyphs[code].Texture)
		}
	}
	t.glyphs = [NumCodes]Glyph{}
	t.present = [NumCodes]bool{}
	t.count = 0
	t.closed = true
}
