// Command glyphquad-demo renders a line of text with the software backend
// and saves it as PNG.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphquad"
	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx/software"
)

func main() {
	var (
		width      = flag.Int("width", 800, "image width")
		height     = flag.Int("height", 200, "image height")
		output     = flag.String("output", "glyphquad.png", "output file")
		fontPath   = flag.String("font", "", "TrueType/OpenType font file (default: Go Regular)")
		text       = flag.String("text", "Hello, glyphquad!", "text to draw")
		pixels     = flag.Int("px", 48, "glyph pixel height")
		scale      = flag.Float64("scale", 1, "layout scale factor")
		anchor     = flag.String("anchor", "centered", "anchor mode: centered or pixel")
		x          = flag.Float64("x", 0, "anchor x")
		y          = flag.Float64("y", 0, "anchor y")
		fg         = flag.String("color", "#ffffff", "text color as #rrggbb or #rrggbbaa")
		bg         = flag.String("background", "#202830", "background color")
		rasterizer = flag.String("rasterizer", fontraster.DefaultBackend, "glyph rasterizer: "+strings.Join(fontraster.Names(), ", "))
		skip       = flag.Bool("skip-unknown", false, "skip characters missing from the glyph table")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		glyphquad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	mode, err := glyphquad.ParseAnchorMode(*anchor)
	if err != nil {
		log.Fatal(err)
	}
	textColor, err := parseHexColor(*fg)
	if err != nil {
		log.Fatal(err)
	}
	background, err := parseHexColor(*bg)
	if err != nil {
		log.Fatal(err)
	}

	res := fontraster.FromBytes("goregular", goregular.TTF)
	if *fontPath != "" {
		res = fontraster.FromFile(*fontPath)
	}

	canvas := software.New(*width, *height)
	canvas.Clear(background)

	table, err := glyphquad.BuildTable(canvas, res, *pixels, glyphquad.WithRasterizer(*rasterizer))
	if err != nil {
		log.Fatalf("Failed to build glyph table: %v", err)
	}
	defer table.Close()
	for _, w := range table.Warnings() {
		log.Printf("warning: %v", w)
	}

	var opts []glyphquad.RendererOption
	if *skip {
		opts = append(opts, glyphquad.WithUnknownGlyphPolicy(glyphquad.UnknownGlyphSkip))
	}
	vp := &glyphquad.Viewport{Width: *width, Height: *height}
	r, err := glyphquad.NewRenderer(table, vp, canvas, canvas, opts...)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	at := glyphquad.Anchor{X: *x, Y: *y, Mode: mode}
	if err := r.Render(*text, at, *scale, textColor); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := canvas.EncodePNG(f); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Rendered %q with %s (%d glyphs) to %s (%dx%d)\n",
		*text, table.FontName(), table.Len(), *output, *width, *height)
}

// parseHexColor parses #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
