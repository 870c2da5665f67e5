package recording

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/glyphquad/gfx"
)

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		typ  CommandType
		want string
	}{
		{CmdUploadTexture, "UploadTexture"},
		{CmdDrawTriangles, "DrawTriangles"},
		{CmdStopUsingProgram, "StopUsingProgram"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestRecorderTextures(t *testing.T) {
	rec := NewRecorder()
	pix := []byte{1, 2, 3, 4, 5, 6}
	h, err := rec.UploadTexture(3, 2, pix, gfx.GlyphSampler())
	if err != nil {
		t.Fatalf("UploadTexture() = %v", err)
	}
	pix[0] = 99

	tex, ok := rec.Texture(h)
	if !ok {
		t.Fatal("Texture() not found")
	}
	want := Texture{Width: 3, Height: 2, Pix: []byte{1, 2, 3, 4, 5, 6}, Params: gfx.GlyphSampler()}
	if diff := cmp.Diff(want, tex); diff != "" {
		t.Errorf("Texture() mismatch (-want +got):\n%s", diff)
	}

	if _, err := rec.UploadTexture(0, 0, nil, gfx.GlyphSampler()); err != nil {
		t.Errorf("zero-size UploadTexture() = %v", err)
	}
	if _, err := rec.UploadTexture(4, 4, pix, gfx.GlyphSampler()); err == nil {
		t.Error("UploadTexture() with short pixel data should fail")
	}

	rec.DeleteTexture(h)
	rec.DeleteTexture(h)
	if rec.LiveTextures() != 1 {
		t.Errorf("LiveTextures() = %d, want 1", rec.LiveTextures())
	}
	if rec.DoubleDeletes() != 1 {
		t.Errorf("DoubleDeletes() = %d, want 1", rec.DoubleDeletes())
	}
}

func TestRecorderBuffers(t *testing.T) {
	rec := NewRecorder()
	buf, err := rec.AllocateDynamicBuffer(8)
	if err != nil {
		t.Fatalf("AllocateDynamicBuffer() = %v", err)
	}
	if err := rec.UpdateBuffer(buf, 4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("UpdateBuffer() = %v", err)
	}
	got, _ := rec.Buffer(buf)
	if diff := cmp.Diff([]byte{0, 0, 0, 0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("Buffer() mismatch (-want +got):\n%s", diff)
	}
	if err := rec.UpdateBuffer(buf, 6, []byte{1, 2, 3}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("overflowing UpdateBuffer() = %v, want ErrOutOfRange", err)
	}
	if err := rec.UpdateBuffer(buf+100, 0, []byte{1}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("UpdateBuffer(unknown) = %v, want ErrUnknownHandle", err)
	}
	if _, err := rec.AllocateDynamicBuffer(0); err == nil {
		t.Error("AllocateDynamicBuffer(0) should fail")
	}
}

func TestRecorderDrawSnapshot(t *testing.T) {
	rec := NewRecorder()
	vao, _ := rec.AllocateVertexArray()
	pos, _ := rec.AllocateDynamicBuffer(gfx.QuadAttribBytes)
	uv, _ := rec.AllocateDynamicBuffer(gfx.QuadAttribBytes)
	if err := rec.ConfigureVertexAttribute(vao, pos, gfx.ProgramText, gfx.AttribPosition); err != nil {
		t.Fatal(err)
	}
	if err := rec.ConfigureVertexAttribute(vao, uv, gfx.ProgramText, gfx.AttribTexCoord); err != nil {
		t.Fatal(err)
	}
	if err := rec.ConfigureVertexAttribute(vao, uv, gfx.ProgramText, "normal"); err == nil {
		t.Error("ConfigureVertexAttribute(normal) should fail")
	}

	if err := rec.DrawTriangles(6); !errors.Is(err, ErrNoProgram) {
		t.Errorf("DrawTriangles without program = %v, want ErrNoProgram", err)
	}
	if err := rec.SetUniform(gfx.ProgramText, gfx.UniformColor, gfx.Vec4{}); !errors.Is(err, ErrNoProgram) {
		t.Errorf("SetUniform without program = %v, want ErrNoProgram", err)
	}

	if err := rec.UseProgram(gfx.ProgramText); err != nil {
		t.Fatal(err)
	}
	color := gfx.Vec4{1, 0.5, 0.25, 1}
	_ = rec.SetUniform(gfx.ProgramText, gfx.UniformColor, color)
	_ = rec.SetUniform(gfx.ProgramText, gfx.UniformProjection, gfx.Identity())

	if err := rec.DrawTriangles(6); !errors.Is(err, ErrNoVertexArray) {
		t.Errorf("DrawTriangles without vertex array = %v, want ErrNoVertexArray", err)
	}

	var data [gfx.QuadAttribBytes]byte
	gfx.PutFloat32s(data[:], 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	_ = rec.UpdateBuffer(pos, 0, data[:])

	rec.SetDepthTest(false)
	rec.BindVertexArray(vao)
	rec.BindTexture(42)
	if err := rec.DrawTriangles(6); err != nil {
		t.Fatalf("DrawTriangles() = %v", err)
	}

	draws := rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	want := DrawCall{
		VertexCount: 6,
		VertexArray: vao,
		Texture:     42,
		Program:     gfx.ProgramText,
		DepthTest:   false,
		Positions:   []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		TexCoords:   make([]float32, 12),
		Color:       color,
		Projection:  gfx.Identity(),
	}
	if diff := cmp.Diff(want, draws[0]); diff != "" {
		t.Errorf("DrawCall mismatch (-want +got):\n%s", diff)
	}

	// Later writes must not alter the snapshot.
	gfx.PutFloat32s(data[:], 0)
	_ = rec.UpdateBuffer(pos, 0, data[:4])
	if draws[0].Positions[0] != 1 {
		t.Error("snapshot aliases the live buffer")
	}
}

func TestRecorderFailOn(t *testing.T) {
	rec := NewRecorder()
	boom := errors.New("boom")
	rec.FailOn(CmdUploadTexture, 2, boom)

	for i := range 2 {
		if _, err := rec.UploadTexture(1, 1, []byte{0}, gfx.GlyphSampler()); err != nil {
			t.Fatalf("upload %d = %v", i, err)
		}
	}
	if _, err := rec.UploadTexture(1, 1, []byte{0}, gfx.GlyphSampler()); !errors.Is(err, boom) {
		t.Errorf("third upload = %v, want boom", err)
	}
	if got := rec.Count(CmdUploadTexture); got != 2 {
		t.Errorf("Count(CmdUploadTexture) = %d, want 2", got)
	}
}

func TestRecorderTypesAndReset(t *testing.T) {
	rec := NewRecorder()
	if !rec.DepthTest() {
		t.Error("new recorder should start with depth testing enabled")
	}
	vao, _ := rec.AllocateVertexArray()
	rec.BindVertexArray(vao)
	rec.BindVertexArray(0)
	rec.StopUsingProgram()

	want := []CommandType{CmdAllocateVertexArray, CmdBindVertexArray, CmdBindVertexArray, CmdStopUsingProgram}
	if diff := cmp.Diff(want, rec.Types()); diff != "" {
		t.Errorf("Types() mismatch (-want +got):\n%s", diff)
	}

	rec.Reset()
	if len(rec.Commands()) != 0 {
		t.Errorf("Commands() after Reset = %d, want 0", len(rec.Commands()))
	}
	if rec.LiveVertexArrays() != 1 {
		t.Errorf("LiveVertexArrays() after Reset = %d, want 1", rec.LiveVertexArrays())
	}
}
