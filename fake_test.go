package glyphquad

import (
	"errors"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx/recording"
)

// fakeBackend is a fontraster.Backend with deterministic metrics and
// injectable failures.
type fakeBackend struct {
	initErr   error
	loadErr   error
	pxErr     error
	failCodes map[rune]error

	libReleases  int
	faceReleases int
	pixelHeight  int
}

// fakeBitmap returns the metrics the fake face reports for code.
// Space is blank; every other code has a distinct size, an underhang of
// code%3 pixels and an advance with a fractional part.
func fakeBitmap(code rune) fontraster.Bitmap {
	if code == ' ' {
		return fontraster.Bitmap{Advance: fixed.Int26_6(8*64 + 40)}
	}
	c := int(code)
	w, h := 10+c%5, 20+c%7
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = byte(c)
	}
	return fontraster.Bitmap{
		Width:   w,
		Height:  h,
		Pix:     pix,
		Left:    1 + c%2,
		Top:     h - c%3,
		Advance: fixed.Int26_6((12+c%4)*64 + 63),
	}
}

func (b *fakeBackend) Init() (fontraster.Library, error) {
	if b.initErr != nil {
		return nil, b.initErr
	}
	return &fakeLibrary{b: b}, nil
}

type fakeLibrary struct{ b *fakeBackend }

func (l *fakeLibrary) LoadFace(res fontraster.Resource) (fontraster.Face, error) {
	if l.b.loadErr != nil {
		return nil, l.b.loadErr
	}
	return &fakeFace{b: l.b}, nil
}

func (l *fakeLibrary) Release() error {
	l.b.libReleases++
	return nil
}

type fakeFace struct{ b *fakeBackend }

func (f *fakeFace) Name() string { return "Fake Sans" }

func (f *fakeFace) SetPixelHeight(px int) error {
	if f.b.pxErr != nil {
		return f.b.pxErr
	}
	f.b.pixelHeight = px
	return nil
}

func (f *fakeFace) RenderGlyph(code rune) (fontraster.Bitmap, error) {
	if err, ok := f.b.failCodes[code]; ok {
		return fontraster.Bitmap{}, err
	}
	return fakeBitmap(code), nil
}

func (f *fakeFace) Release() error {
	f.b.faceReleases++
	return nil
}

var (
	errBoom      = errors.New("boom")
	fakeFont     = fontraster.FromBytes("fake.ttf", []byte("fake"))
	testViewport = Viewport{Width: 800, Height: 600}
)

// newFakeTable builds a table from a fresh fakeBackend on rec.
func newFakeTable(t *testing.T, rec *recording.Recorder) *Table {
	t.Helper()
	table, err := BuildTable(rec, fakeFont, 48, WithRasterizerBackend(&fakeBackend{}))
	if err != nil {
		t.Fatalf("BuildTable() = %v", err)
	}
	t.Cleanup(func() { _ = table.Close() })
	return table
}

// newFakeRenderer returns a renderer over a fake table drawing into a new
// recorder, and the viewport it reads.
func newFakeRenderer(t *testing.T, opts ...RendererOption) (*Renderer, *recording.Recorder, *Viewport) {
	t.Helper()
	rec := recording.NewRecorder()
	table := newFakeTable(t, rec)
	vp := testViewport
	r, err := NewRenderer(table, &vp, rec, rec, opts...)
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	rec.Reset()
	return r, rec, &vp
}

// quadPositions returns the six xy positions of a quad with bottom-left
// corner (x, y), flattened, in the order the renderer emits them.
func quadPositions(x, y, w, h float32) []float32 {
	return []float32{
		x, y + h,
		x, y,
		x + w, y,
		x, y + h,
		x + w, y,
		x + w, y + h,
	}
}

var quadTexCoords = []float32{0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 0}
