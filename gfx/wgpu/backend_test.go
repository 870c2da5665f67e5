package wgpu

import (
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphquad"
	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	device, queue := createNoopDevice(t)
	b, err := New(device, queue, 160, 90, opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestNewArguments(t *testing.T) {
	device, queue := createNoopDevice(t)
	if _, err := New(nil, queue, 10, 10); !errors.Is(err, glyphquad.ErrNilDevice) {
		t.Errorf("New(nil device) = %v, want ErrNilDevice", err)
	}
	if _, err := New(device, nil, 10, 10); !errors.Is(err, glyphquad.ErrNilDevice) {
		t.Errorf("New(nil queue) = %v, want ErrNilDevice", err)
	}
	if _, err := New(device, queue, 0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("New(0x10) = %v, want ErrInvalidSize", err)
	}
}

func TestBackendRendersText(t *testing.T) {
	b := newBackend(t)
	b.Clear(color.Black)

	table, err := glyphquad.BuildTable(b, fontraster.FromBytes("goregular", goregular.TTF), 24)
	if err != nil {
		t.Fatalf("BuildTable() = %v", err)
	}
	defer table.Close()

	vp := &glyphquad.Viewport{Width: 160, Height: 90}
	r, err := glyphquad.NewRenderer(table, vp, b, b)
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	defer r.Close()

	if err := r.Render("Hi", glyphquad.Centered(0, 0), 1, color.White); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if b.Draws() != 2 {
		t.Errorf("Draws() = %d, want 2", b.Draws())
	}
	if !b.DepthTest() {
		t.Error("depth test state not restored")
	}

	img, err := b.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels() = %v", err)
	}
	if got := img.Bounds().Size(); got.X != 160 || got.Y != 90 {
		t.Errorf("ReadPixels size = %v, want 160x90", got)
	}
}

func TestBackendSPIRV(t *testing.T) {
	b := newBackend(t, WithSPIRV())
	if b.pipeline == nil || b.pipeline.pipeline == nil {
		t.Fatal("pipeline not created")
	}
}

func TestCompileSPIRV(t *testing.T) {
	code, err := compileSPIRV(textShaderSource)
	if err != nil {
		t.Fatalf("compileSPIRV() = %v", err)
	}
	// SPIR-V magic number.
	if len(code) == 0 || code[0] != 0x07230203 {
		t.Errorf("compileSPIRV() produced no SPIR-V module")
	}
}

func TestBackendResources(t *testing.T) {
	b := newBackend(t)

	tex, err := b.UploadTexture(0, 0, nil, gfx.GlyphSampler())
	if err != nil {
		t.Fatalf("UploadTexture(0x0) = %v", err)
	}
	if _, err := b.UploadTexture(2, 2, []byte{1}, gfx.GlyphSampler()); err == nil {
		t.Error("UploadTexture with short data should fail")
	}
	b.DeleteTexture(tex)
	b.DeleteTexture(tex)
	if len(b.textures) != 0 {
		t.Errorf("textures = %d, want 0", len(b.textures))
	}

	if _, err := b.AllocateDynamicBuffer(0); err == nil {
		t.Error("AllocateDynamicBuffer(0) should fail")
	}
	buf, err := b.AllocateDynamicBuffer(gfx.QuadAttribBytes)
	if err != nil {
		t.Fatalf("AllocateDynamicBuffer() = %v", err)
	}
	if err := b.UpdateBuffer(buf, 40, make([]byte, 16)); err == nil {
		t.Error("UpdateBuffer past the end should fail")
	}
	if err := b.UpdateBuffer(buf+100, 0, nil); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("UpdateBuffer(unknown) = %v, want ErrUnknownHandle", err)
	}

	vao, _ := b.AllocateVertexArray()
	if err := b.ConfigureVertexAttribute(vao, buf, gfx.ProgramText, "color"); err == nil {
		t.Error("ConfigureVertexAttribute(color) should fail")
	}
}

func TestBackendDrawErrors(t *testing.T) {
	b := newBackend(t)
	if err := b.DrawTriangles(6); !errors.Is(err, ErrNoProgram) {
		t.Errorf("DrawTriangles without program = %v, want ErrNoProgram", err)
	}
	if err := b.UseProgram(gfx.ProgramKind(7)); err == nil {
		t.Error("UseProgram(unknown) should fail")
	}
	if err := b.UseProgram(gfx.ProgramText); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawTriangles(6); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("DrawTriangles without vertex array = %v, want ErrUnknownHandle", err)
	}
	if err := b.SetUniform(gfx.ProgramText, gfx.UniformProjection, gfx.Vec4{}); err == nil {
		t.Error("SetUniform(projection, Vec4) should fail")
	}

	b.Close()
	b.Close()
	if err := b.DrawTriangles(6); !errors.Is(err, ErrClosed) {
		t.Errorf("DrawTriangles after Close = %v, want ErrClosed", err)
	}
	if _, err := b.ReadPixels(); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadPixels after Close = %v, want ErrClosed", err)
	}
}

// stalledQueue never reports a submission as completed.
type stalledQueue struct {
	hal.Queue
}

func (stalledQueue) PollCompleted() uint64 { return 0 }

func TestSubmitTimeout(t *testing.T) {
	device, queue := createNoopDevice(t)
	b, err := New(device, stalledQueue{queue}, 8, 8, WithSubmitTimeout(time.Millisecond))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	defer b.Close()

	_, err = b.ReadPixels()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReadPixels() = %v, want ErrTimeout", err)
	}
	if strings.Contains(err.Error(), "%!") {
		t.Errorf("malformed error message: %q", err)
	}

	if err := b.UseProgram(gfx.ProgramText); err != nil {
		t.Fatal(err)
	}
	tex, _ := b.UploadTexture(1, 1, []byte{255}, gfx.GlyphSampler())
	buf, _ := b.AllocateDynamicBuffer(gfx.QuadAttribBytes)
	vao, _ := b.AllocateVertexArray()
	_ = b.ConfigureVertexAttribute(vao, buf, gfx.ProgramText, gfx.AttribPosition)
	_ = b.ConfigureVertexAttribute(vao, buf, gfx.ProgramText, gfx.AttribTexCoord)
	b.BindVertexArray(vao)
	b.BindTexture(tex)
	if err := b.DrawTriangles(gfx.QuadVertices); !errors.Is(err, ErrTimeout) {
		t.Errorf("DrawTriangles() = %v, want ErrTimeout", err)
	}
	if b.Draws() != 0 {
		t.Errorf("Draws() = %d after timeout, want 0", b.Draws())
	}
}

func TestReadPixelsClearsOnce(t *testing.T) {
	b := newBackend(t)
	b.Clear(color.White)
	if _, err := b.ReadPixels(); err != nil {
		t.Fatalf("ReadPixels() = %v", err)
	}
	if b.pendingClear != nil {
		t.Error("pending clear not consumed by ReadPixels")
	}
	img, err := b.ReadPixels()
	if err != nil {
		t.Fatalf("second ReadPixels() = %v", err)
	}
	if len(img.Pix) != 160*90*4 {
		t.Errorf("len(Pix) = %d, want %d", len(img.Pix), 160*90*4)
	}
}

type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device   { return nil }
func (plainProvider) Queue() gpucontext.Queue     { return nil }
func (plainProvider) Adapter() gpucontext.Adapter { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop"}
}

type halDeviceProvider struct {
	plainProvider
	device hal.Device
	queue  hal.Queue
}

func (p halDeviceProvider) HalDevice() any { return p.device }
func (p halDeviceProvider) HalQueue() any  { return p.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(plainProvider{}, 10, 10); !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("NewFromProvider(plain) = %v, want ErrNoHALAccess", err)
	}
	if _, err := NewFromProvider(nil, 10, 10); !errors.Is(err, glyphquad.ErrNilDevice) {
		t.Errorf("NewFromProvider(nil) = %v, want ErrNilDevice", err)
	}
	if _, err := NewFromProvider(halDeviceProvider{}, 10, 10); !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("NewFromProvider(nil HAL) = %v, want ErrNoHALAccess", err)
	}

	device, queue := createNoopDevice(t)
	b, err := NewFromProvider(halDeviceProvider{device: device, queue: queue}, 32, 16)
	if err != nil {
		t.Fatalf("NewFromProvider() = %v", err)
	}
	defer b.Close()
	if b.Width() != 32 || b.Height() != 16 {
		t.Errorf("size = %dx%d, want 32x16", b.Width(), b.Height())
	}
}

var _ gpucontext.DeviceProvider = halDeviceProvider{}
