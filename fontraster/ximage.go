package fontraster

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ximageBackend implements Backend using golang.org/x/image/font/opentype.
type ximageBackend struct{}

// Init implements Backend.Init. The opentype package keeps no global state,
// so initialization cannot fail.
func (ximageBackend) Init() (Library, error) {
	return &ximageLibrary{}, nil
}

type ximageLibrary struct {
	released bool
}

// LoadFace implements Library.LoadFace.
func (l *ximageLibrary) LoadFace(res Resource) (Face, error) {
	if l.released {
		return nil, ErrReleased
	}
	if res.IsEmpty() {
		return nil, ErrEmptyResource
	}
	data, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	// ParseCollection also accepts single TTF/OTF files as a one-font collection.
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("fontraster: failed to parse font %s: %w", res, err)
	}
	if res.Index < 0 || res.Index >= coll.NumFonts() {
		return nil, fmt.Errorf("fontraster: face index %d out of range [0, %d) in %s",
			res.Index, coll.NumFonts(), res)
	}
	f, err := coll.Font(res.Index)
	if err != nil {
		return nil, fmt.Errorf("fontraster: failed to load face %d of %s: %w", res.Index, res, err)
	}

	face := &ximageFace{font: f, name: familyName(f)}
	logger().Debug("fontraster: face loaded", "backend", "ximage", "font", face.name, "resource", res.String())
	return face, nil
}

// Release implements Library.Release.
func (l *ximageLibrary) Release() error {
	if l.released {
		return ErrReleased
	}
	l.released = true
	return nil
}

// ximageFace implements Face on top of an opentype face. The opentype face
// reuses one mask buffer across Glyph calls, so every bitmap is copied out.
type ximageFace struct {
	font     *opentype.Font
	face     font.Face
	name     string
	released bool
}

// Name implements Face.Name.
func (f *ximageFace) Name() string { return f.name }

// SetPixelHeight implements Face.SetPixelHeight. At 72 DPI one point is one
// pixel, so the face size is the pixel height.
func (f *ximageFace) SetPixelHeight(px int) error {
	if f.released {
		return ErrReleased
	}
	if px <= 0 {
		return fmt.Errorf("fontraster: invalid pixel height %d", px)
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("fontraster: failed to create face at %dpx: %w", px, err)
	}
	f.closeFace()
	f.face = face
	return nil
}

// RenderGlyph implements Face.RenderGlyph.
func (f *ximageFace) RenderGlyph(code rune) (Bitmap, error) {
	if f.released {
		return Bitmap{}, ErrReleased
	}
	if f.face == nil {
		return Bitmap{}, ErrNoPixelHeight
	}

	// For characters missing from the cmap the face still rasterizes
	// .notdef and only reports !ok; a nil mask means the load failed.
	dr, mask, maskp, advance, ok := f.face.Glyph(fixed.Point26_6{}, code)
	if !ok && mask == nil {
		return Bitmap{}, fmt.Errorf("fontraster: failed to load glyph for %U", code)
	}

	w, h := dr.Dx(), dr.Dy()
	pix := make([]byte, w*h)
	if w > 0 && h > 0 {
		copyMask(pix, w, h, mask, maskp)
	}

	return Bitmap{
		Width:   w,
		Height:  h,
		Pix:     pix,
		Left:    dr.Min.X,
		Top:     -dr.Min.Y,
		Advance: advance,
	}, nil
}

// Release implements Face.Release.
func (f *ximageFace) Release() error {
	if f.released {
		return ErrReleased
	}
	f.released = true
	f.closeFace()
	f.font = nil
	return nil
}

func (f *ximageFace) closeFace() {
	if f.face != nil {
		_ = f.face.Close()
		f.face = nil
	}
}

// copyMask copies a w x h region of mask starting at maskp into pix.
func copyMask(pix []byte, w, h int, mask image.Image, maskp image.Point) {
	if a, ok := mask.(*image.Alpha); ok {
		for y := 0; y < h; y++ {
			off := a.PixOffset(maskp.X, maskp.Y+y)
			copy(pix[y*w:(y+1)*w], a.Pix[off:off+w])
		}
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.AlphaModel.Convert(mask.At(maskp.X+x, maskp.Y+y)).(color.Alpha)
			pix[y*w+x] = c.A
		}
	}
}

// familyName returns the family name of f, falling back to the full name.
func familyName(f *opentype.Font) string {
	var buf sfnt.Buffer
	if name, err := f.Name(&buf, sfnt.NameIDFamily); err == nil && name != "" {
		return name
	}
	if name, err := f.Name(&buf, sfnt.NameIDFull); err == nil {
		return name
	}
	return ""
}
