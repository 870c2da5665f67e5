package glyphquad

import (
	"fmt"
	"image/color"
)

// AnchorMode selects the coordinate space of layout output.
type AnchorMode uint8

const (
	// AnchorCentered centers the text block on an NDC point.
	AnchorCentered AnchorMode = iota

	// AnchorPixelOrigin starts the pen at a pixel position with no centering.
	AnchorPixelOrigin
)

// String returns the mode name.
func (m AnchorMode) String() string {
	switch m {
	case AnchorCentered:
		return "centered"
	case AnchorPixelOrigin:
		return "pixel"
	default:
		return fmt.Sprintf("AnchorMode(%d)", m)
	}
}

// ParseAnchorMode returns the mode named by s ("centered" or "pixel").
func ParseAnchorMode(s string) (AnchorMode, error) {
	switch s {
	case "centered", "center", "ndc":
		return AnchorCentered, nil
	case "pixel", "pixels", "origin":
		return AnchorPixelOrigin, nil
	default:
		return 0, fmt.Errorf("glyphquad: unknown anchor mode %q", s)
	}
}

// Anchor positions a text block.
type Anchor struct {
	X, Y float64
	Mode AnchorMode
}

// Centered returns an anchor that centers text on the NDC point (x, y).
func Centered(x, y float64) Anchor {
	return Anchor{X: x, Y: y, Mode: AnchorCentered}
}

// PixelOrigin returns an anchor whose pen starts at pixel (x, y), with the
// origin at the bottom-left of the viewport.
func PixelOrigin(x, y float64) Anchor {
	return Anchor{X: x, Y: y, Mode: AnchorPixelOrigin}
}

// LayoutRequest describes one string to lay out or draw.
type LayoutRequest struct {
	Text   string
	Scale  float64
	Anchor Anchor
	Color  color.Color
}
