package glyphquad

import (
	"errors"
	"fmt"
)

// Sentinel errors for glyphquad.
var (
	// ErrFontBackendInit is the kind of FontLoadError returned when the
	// rasterization backend cannot be opened or initialized.
	ErrFontBackendInit = errors.New("glyphquad: font backend initialization failed")

	// ErrFontResource is the kind of FontLoadError returned when the font
	// resource is empty, unreadable, or no face can be created from it.
	ErrFontResource = errors.New("glyphquad: font resource unavailable")

	// ErrInvalidPixelHeight is returned by BuildTable for a non-positive
	// pixel height.
	ErrInvalidPixelHeight = errors.New("glyphquad: pixel height must be positive")

	// ErrUnknownGlyph is matched by UnknownGlyphError.
	ErrUnknownGlyph = errors.New("glyphquad: character not in glyph table")

	// ErrInvalidViewport is returned by layout calls when the viewport is
	// nil or has a non-positive dimension.
	ErrInvalidViewport = errors.New("glyphquad: viewport dimensions must be positive")

	// ErrRendererClosed is returned when using a Renderer after Close.
	ErrRendererClosed = errors.New("glyphquad: renderer is closed")

	// ErrTableClosed is returned when building a Renderer over a closed Table.
	ErrTableClosed = errors.New("glyphquad: glyph table is closed")

	// ErrNilDevice is returned when a required device or shader manager is nil.
	ErrNilDevice = errors.New("glyphquad: nil device")
)

// FontLoadError reports a fatal failure while loading the font for a Table.
// Kind is ErrFontBackendInit or ErrFontResource; errors.Is matches both the
// kind and the wrapped cause.
type FontLoadError struct {
	Kind     error
	Resource string
	Err      error
}

func (e *FontLoadError) Error() string {
	msg := e.Kind.Error()
	if e.Resource != "" {
		msg += " (" + e.Resource + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the kind and the cause.
func (e *FontLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// GlyphRasterizationWarning records a character that failed to rasterize
// while building a Table. The character is absent from the table; the
// table itself is still usable.
type GlyphRasterizationWarning struct {
	Code rune
	Err  error
}

func (w *GlyphRasterizationWarning) Error() string {
	return fmt.Sprintf("glyphquad: glyph %U not rasterized: %v", w.Code, w.Err)
}

func (w *GlyphRasterizationWarning) Unwrap() error { return w.Err }

// UnknownGlyphError is returned by layout calls for a character that is
// not in the glyph table. Offset is the byte offset of the character in
// the laid out string.
type UnknownGlyphError struct {
	Code   rune
	Offset int
}

func (e *UnknownGlyphError) Error() string {
	return fmt.Sprintf("glyphquad: character %U at offset %d not in glyph table", e.Code, e.Offset)
}

// Is reports whether target is ErrUnknownGlyph.
func (e *UnknownGlyphError) Is(target error) bool {
	return target == ErrUnknownGlyph
}
