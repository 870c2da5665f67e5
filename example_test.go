package glyphquad_test

import (
	"fmt"
	"image/color"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphquad"
	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx/recording"
)

func Example() {
	dev := recording.NewRecorder()

	table, err := glyphquad.BuildTable(dev, fontraster.FromBytes("goregular", goregular.TTF), 48)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer table.Close()

	vp := &glyphquad.Viewport{Width: 800, Height: 600}
	r, err := glyphquad.NewRenderer(table, vp, dev, dev)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer r.Close()

	if err := r.Render("Hi there", glyphquad.Centered(0, 0), 1, color.White); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("draw calls:", len(dev.Draws()))
	fmt.Println("vertices per draw:", dev.Draws()[0].VertexCount)
	// Output:
	// draw calls: 7
	// vertices per draw: 6
}

func ExampleRenderer_Measure() {
	dev := recording.NewRecorder()
	table, _ := glyphquad.BuildTable(dev, fontraster.FromBytes("goregular", goregular.TTF), 48)
	defer table.Close()

	vp := &glyphquad.Viewport{Width: 800, Height: 600}
	r, _ := glyphquad.NewRenderer(table, vp, dev, dev)
	defer r.Close()

	_, _, err := r.Measure("naïve", 1)
	fmt.Println(err)
	// Output:
	// glyphquad: character U+00EF at offset 2 not in glyph table
}
