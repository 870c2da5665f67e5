package fontraster

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// gotextBackend implements Backend using go-text/typesetting for parsing
// and outline extraction, and golang.org/x/image/vector for coverage.
// Outlines are rasterized unhinted.
type gotextBackend struct{}

// Init implements Backend.Init.
func (gotextBackend) Init() (Library, error) {
	return &gotextLibrary{}, nil
}

type gotextLibrary struct {
	released bool
}

// LoadFace implements Library.LoadFace.
func (l *gotextLibrary) LoadFace(res Resource) (Face, error) {
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

	if res.Index == 0 {
		face, err := font.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("fontraster: failed to parse font %s: %w", res, err)
		}
		logger().Debug("fontraster: face loaded", "backend", "gotext", "resource", res.String())
		return &gotextFace{face: face, name: res.String()}, nil
	}

	faces, err := font.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fontraster: failed to parse font collection %s: %w", res, err)
	}
	if res.Index < 0 || res.Index >= len(faces) {
		return nil, fmt.Errorf("fontraster: face index %d out of range [0, %d) in %s",
			res.Index, len(faces), res)
	}

	logger().Debug("fontraster: face loaded", "backend", "gotext", "resource", res.String(), "index", res.Index)
	return &gotextFace{face: faces[res.Index], name: res.String()}, nil
}

// Release implements Library.Release.
func (l *gotextLibrary) Release() error {
	if l.released {
		return ErrReleased
	}
	l.released = true
	return nil
}

type gotextFace struct {
	face     *font.Face
	name     string
	px       int
	released bool
}

// Name implements Face.Name. go-text exposes no cheap family lookup, so
// the resource label is used.
func (f *gotextFace) Name() string { return f.name }

// SetPixelHeight implements Face.SetPixelHeight.
func (f *gotextFace) SetPixelHeight(px int) error {
	if f.released {
		return ErrReleased
	}
	if px <= 0 {
		return fmt.Errorf("fontraster: invalid pixel height %d", px)
	}
	f.px = px
	return nil
}

// RenderGlyph implements Face.RenderGlyph.
func (f *gotextFace) RenderGlyph(code rune) (Bitmap, error) {
	if f.released {
		return Bitmap{}, ErrReleased
	}
	if f.px == 0 {
		return Bitmap{}, ErrNoPixelHeight
	}

	gid, ok := f.face.NominalGlyph(code)
	if !ok {
		gid = 0 // .notdef
	}

	upem := float32(f.face.Upem())
	if upem == 0 {
		return Bitmap{}, fmt.Errorf("fontraster: font %s reports zero units per em", f.name)
	}
	scale := float32(f.px) / upem
	advance := fixed.Int26_6(math.Round(float64(f.face.HorizontalAdvance(gid)*scale) * 64))

	outline, ok := f.face.GlyphData(gid).(font.GlyphOutline)
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: %U", ErrNoOutline, code)
	}
	if len(outline.Segments) == 0 {
		return Bitmap{Advance: advance}, nil
	}

	minX, minY, maxX, maxY := outlineBounds(outline.Segments)
	x0 := int(math.Floor(float64(minX * scale)))
	x1 := int(math.Ceil(float64(maxX * scale)))
	yBottom := int(math.Floor(float64(minY * scale)))
	yTop := int(math.Ceil(float64(maxY * scale)))
	w, h := x1-x0, yTop-yBottom
	if w <= 0 || h <= 0 {
		return Bitmap{Advance: advance}, nil
	}

	// Font units are y-up; bitmap rows are y-down from the top edge.
	pt := func(p ot.SegmentPoint) (float32, float32) {
		return p.X*scale - float32(x0), float32(yTop) - p.Y*scale
	}

	r := vector.NewRasterizer(w, h)
	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if open {
				r.ClosePath()
			}
			r.MoveTo(pt(seg.Args[0]))
			open = true
		case ot.SegmentOpLineTo:
			r.LineTo(pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		r.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return Bitmap{
		Width:   w,
		Height:  h,
		Pix:     dst.Pix,
		Left:    x0,
		Top:     yTop,
		Advance: advance,
	}, nil
}

// Release implements Face.Release.
func (f *gotextFace) Release() error {
	if f.released {
		return ErrReleased
	}
	f.released = true
	f.face = nil
	return nil
}

// outlineBounds returns the bounding box of all on- and off-curve points,
// in font units. It contains the curve itself.
func outlineBounds(segs []ot.Segment) (minX, minY, maxX, maxY float32) {
	minX, minY = math.MaxFloat32, math.MaxFloat32
	maxX, maxY = -math.MaxFloat32, -math.MaxFloat32
	for _, seg := range segs {
		n := 1
		switch seg.Op {
		case ot.SegmentOpQuadTo:
			n = 2
		case ot.SegmentOpCubeTo:
			n = 3
		}
		for _, p := range seg.Args[:n] {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
	}
	return minX, minY, maxX, maxY
}
