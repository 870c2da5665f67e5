// Package glyphquad lays out ASCII text as textured quads and draws them
// through a small GPU capability.
//
// # Overview
//
// glyphquad has two parts:
//
//   - A glyph [Table]: one single-channel texture plus size, bearing and
//     advance metrics for each character code 0..127, rasterized once per
//     (font, pixel height) pair by a [fontraster] backend.
//   - A [Renderer]: measures strings, computes a quad per glyph and issues
//     one six-vertex draw per visible glyph, overwriting a reused pair of
//     vertex buffers.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/glyphquad"
//	    "github.com/gogpu/glyphquad/fontraster"
//	    "github.com/gogpu/glyphquad/gfx/software"
//	)
//
//	canvas := software.New(800, 600)
//	table, err := glyphquad.BuildTable(canvas, fontraster.FromFile("Go-Regular.ttf"), 48)
//	if err != nil {
//	    return err
//	}
//	defer table.Close()
//
//	vp := &glyphquad.Viewport{Width: 800, Height: 600}
//	r, err := glyphquad.NewRenderer(table, vp, canvas, canvas)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	err = r.Render("Hello", glyphquad.Centered(0, 0), 1, color.White)
//
// # Coordinate Spaces
//
// Two anchor modes share the same quad math:
//
//   - [AnchorCentered]: the anchor is a point in normalized device
//     coordinates and the text block is centered on it. Pixel metrics are
//     converted with pixel*2/viewport and the projection is identity.
//   - [AnchorPixelOrigin]: the anchor is the pen position in pixels
//     (origin bottom-left, y up). Positions stay in pixels and the
//     projection is an orthographic matrix over the viewport.
//
// Advances are 26.6 fixed point and are always floored to whole pixels
// before scaling, so long strings accumulate no drift.
//
// # Backends
//
// The [gfx] package defines the device and shader capabilities. Available
// implementations:
//
//   - gfx/recording: records every call, for tests and inspection
//   - gfx/software: CPU rendering into an *image.RGBA
//   - gfx/wgpu: gogpu/wgpu HAL device
//   - gfx/opengl: OpenGL 3.3 core (build tag gl)
//
// # Logging
//
// glyphquad is silent by default. Call [SetLogger] to receive debug
// lifecycle events and warnings for glyphs that failed to rasterize.
//
// # Concurrency
//
// Tables and renderers are not safe for concurrent use. GPU submission is
// single-threaded; serialize Render calls per renderer.
package glyphquad
