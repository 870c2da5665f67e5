// Package fontraster turns a font resource and a pixel height into
// per-character coverage bitmaps and metrics.
//
// The package mirrors the lifecycle of classic rasterization libraries:
//
//	lib, err := backend.Init()          // library handle
//	face, err := lib.LoadFace(res)      // one font face
//	err = face.SetPixelHeight(48)       // no DPI scaling
//	bmp, err := face.RenderGlyph('A')   // bitmap + bearing + advance
//	face.Release()
//	lib.Release()
//
// Two backends are registered by default:
//
//   - "ximage": golang.org/x/image/font/opentype (the default)
//   - "gotext": github.com/go-text/typesetting outlines rasterized with
//     golang.org/x/image/vector
//
// Custom backends can be added with Register.
package fontraster

import (
	"errors"

	"golang.org/x/image/math/fixed"
)

// Sentinel errors for fontraster.
var (
	// ErrEmptyResource is returned when a resource has neither a path nor data.
	ErrEmptyResource = errors.New("fontraster: empty font resource")

	// ErrUnknownBackend is returned by Open for an unregistered backend name.
	ErrUnknownBackend = errors.New("fontraster: unknown backend")

	// ErrReleased is returned when using a face or library after Release.
	ErrReleased = errors.New("fontraster: resource already released")

	// ErrNoPixelHeight is returned by RenderGlyph before SetPixelHeight.
	ErrNoPixelHeight = errors.New("fontraster: pixel height not set")

	// ErrNoOutline is returned for glyphs without vector outline data.
	ErrNoOutline = errors.New("fontraster: glyph has no outline")
)

// Backend creates rasterization library handles.
type Backend interface {
	// Init initializes the backend and returns a library handle.
	Init() (Library, error)
}

// Library is an initialized rasterization backend.
type Library interface {
	// LoadFace parses the resource and creates a face from it.
	LoadFace(res Resource) (Face, error)

	// Release frees the library. Faces must be released first.
	Release() error
}

// Face is one font face that renders glyphs at a configurable pixel height.
// A Face holds per-face state and is not safe for concurrent use.
type Face interface {
	// Name returns the font family name, or "" if unknown.
	Name() string

	// SetPixelHeight sets the nominal pixel height (pixels per em) used by
	// subsequent RenderGlyph calls.
	SetPixelHeight(px int) error

	// RenderGlyph rasterizes the glyph for code. Characters missing from
	// the font map to the font's .notdef glyph.
	RenderGlyph(code rune) (Bitmap, error)

	// Release frees the face.
	Release() error
}

// Bitmap is one rasterized glyph.
type Bitmap struct {
	// Width and Height are the bitmap dimensions in pixels; both are zero
	// for blank glyphs such as a space.
	Width, Height int

	// Pix holds Width*Height coverage bytes, rows top-down. The slice is
	// owned by the Bitmap and not reused by the face.
	Pix []byte

	// Left is the horizontal offset from the pen position to the left
	// edge of the bitmap.
	Left int

	// Top is the vertical offset from the baseline up to the top edge of
	// the bitmap.
	Top int

	// Advance is the horizontal pen displacement in 1/64 pixel units.
	Advance fixed.Int26_6
}
