// Package wgpu implements gfx.Device and gfx.ShaderManager on a
// github.com/gogpu/wgpu HAL device.
//
// The backend renders into an offscreen RGBA8 texture it owns. Every
// DrawTriangles call encodes one render pass, submits it and waits until
// the queue reports the submission complete, so uniform and vertex buffer
// updates between draws are always observed in order. ReadPixels copies the target back to the CPU.
//
// Coverage textures are R8Unorm. A zero-sized texture is stored as a 1x1
// transparent texture since WebGPU rejects empty extents.
package wgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphquad"
	"github.com/gogpu/glyphquad/gfx"
)

var (
	// ErrUnknownHandle is returned for a handle the backend never issued.
	ErrUnknownHandle = errors.New("wgpu: unknown handle")

	// ErrNoProgram is returned when drawing without the text program.
	ErrNoProgram = errors.New("wgpu: text program not in use")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("wgpu: backend closed")

	// ErrInvalidSize is returned for non-positive target dimensions.
	ErrInvalidSize = errors.New("wgpu: invalid target size")

	// ErrTimeout is returned when submitted work does not complete in time.
	ErrTimeout = errors.New("wgpu: timed out waiting for GPU")
)

// defaultSubmitTimeout bounds every wait for submitted work.
const defaultSubmitTimeout = 5 * time.Second

// pollInterval is the sleep between completion polls.
const pollInterval = 100 * time.Microsecond

// copyPitchAlignment is the row alignment of texture to buffer copies.
const copyPitchAlignment = 256

type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	params gfx.SamplerParams

	// group binds this texture with the shared uniform buffer. Created on
	// first draw.
	group hal.BindGroup
}

type buffer struct {
	buf  hal.Buffer
	size int
}

type vertexArray struct {
	position gfx.BufferHandle
	texCoord gfx.BufferHandle
}

// Option configures a Backend.
type Option func(*options)

type options struct {
	format  gputypes.TextureFormat
	spirv   bool
	timeout time.Duration
}

// WithTargetFormat sets the render target format. The default is
// RGBA8Unorm, which ReadPixels returns as-is.
func WithTargetFormat(format gputypes.TextureFormat) Option {
	return func(o *options) { o.format = format }
}

// WithSPIRV compiles the text shader to SPIR-V with naga instead of passing
// WGSL source to the device.
func WithSPIRV() Option {
	return func(o *options) { o.spirv = true }
}

// WithSubmitTimeout bounds the wait for each submission. The default is
// five seconds. Non-positive values are ignored.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Backend is a HAL-backed render target. It is not safe for concurrent use.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	width, height uint32
	target        hal.Texture
	targetView    hal.TextureView

	pipeline   *textPipeline
	uniformBuf hal.Buffer
	samplers   map[gfx.SamplerParams]hal.Sampler

	next     uint32
	textures map[gfx.TextureHandle]*texture
	buffers  map[gfx.BufferHandle]*buffer
	vaos     map[gfx.VertexArrayHandle]*vertexArray

	boundVAO gfx.VertexArrayHandle
	boundTex gfx.TextureHandle
	depth    bool

	program    gfx.ProgramKind
	color      gfx.Vec4
	projection gfx.Mat4

	// pendingClear is the color the next render pass clears to, nil to load.
	pendingClear *gputypes.Color

	draws  int
	closed bool
}

var (
	_ gfx.Device        = (*Backend)(nil)
	_ gfx.ShaderManager = (*Backend)(nil)
)

// New creates a backend rendering into a width x height target on device.
// The target starts out transparent.
func New(device hal.Device, queue hal.Queue, width, height int, opts ...Option) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, glyphquad.ErrNilDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	b := &Backend{
		device:       device,
		queue:        queue,
		opts:         options{format: gputypes.TextureFormatRGBA8Unorm, timeout: defaultSubmitTimeout},
		width:        uint32(width),  //nolint:gosec // checked positive above
		height:       uint32(height), //nolint:gosec // checked positive above
		samplers:     make(map[gfx.SamplerParams]hal.Sampler),
		textures:     make(map[gfx.TextureHandle]*texture),
		buffers:      make(map[gfx.BufferHandle]*buffer),
		vaos:         make(map[gfx.VertexArrayHandle]*vertexArray),
		depth:        true,
		color:        gfx.Vec4{1, 1, 1, 1},
		projection:   gfx.Identity(),
		pendingClear: &gputypes.Color{},
	}
	for _, o := range opts {
		o(&b.opts)
	}
	if err := b.init(); err != nil {
		b.Close()
		return nil, err
	}
	glyphquad.Logger().Debug("wgpu backend ready", "width", width, "height", height, "format", b.opts.format)
	return b, nil
}

func (b *Backend) init() error {
	p, err := newTextPipeline(b.device, b.opts.format, b.opts.spirv)
	if err != nil {
		return err
	}
	b.pipeline = p

	b.uniformBuf, err = b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyphquad_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}

	b.target, err = b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyphquad_target",
		Size:          hal.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        b.opts.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target: %w", err)
	}
	b.targetView, err = b.device.CreateTextureView(b.target, &hal.TextureViewDescriptor{
		Label:         "glyphquad_target_view",
		Format:        b.opts.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	return nil
}

// Width returns the target width in pixels.
func (b *Backend) Width() int { return int(b.width) }

// Height returns the target height in pixels.
func (b *Backend) Height() int { return int(b.height) }

// Draws returns the number of successful DrawTriangles calls.
func (b *Backend) Draws() int { return b.draws }

// Clear makes the next render pass clear the target to col.
func (b *Backend) Clear(col color.Color) {
	v := gfx.ColorVec4(col)
	// Clear values are premultiplied like everything the pipeline writes.
	b.pendingClear = &gputypes.Color{
		R: float64(v[0] * v[3]),
		G: float64(v[1] * v[3]),
		B: float64(v[2] * v[3]),
		A: float64(v[3]),
	}
}

// Close releases every GPU resource the backend created. Closing twice is
// a no-op. The device and queue are not destroyed.
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true
	for h := range b.textures {
		b.DeleteTexture(h)
	}
	for h := range b.buffers {
		b.DeleteBuffer(h)
	}
	clear(b.vaos)
	for _, s := range b.samplers {
		b.device.DestroySampler(s)
	}
	clear(b.samplers)
	if b.targetView != nil {
		b.device.DestroyTextureView(b.targetView)
		b.targetView = nil
	}
	if b.target != nil {
		b.device.DestroyTexture(b.target)
		b.target = nil
	}
	if b.uniformBuf != nil {
		b.device.DestroyBuffer(b.uniformBuf)
		b.uniformBuf = nil
	}
	if b.pipeline != nil {
		b.pipeline.destroy()
		b.pipeline = nil
	}
}

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

// UploadTexture implements gfx.Device.
func (b *Backend) UploadTexture(width, height int, pix []byte, params gfx.SamplerParams) (gfx.TextureHandle, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if width < 0 || height < 0 || len(pix) < width*height {
		return 0, fmt.Errorf("wgpu: texture %dx%d with %d bytes", width, height, len(pix))
	}
	data := pix[:width*height]
	if width == 0 || height == 0 {
		width, height, data = 1, 1, []byte{0}
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // validated non-negative

	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyphquad_glyph",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create glyph texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glyphquad_glyph_view",
		Format:        gputypes.TextureFormatR8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create glyph view: %w", err)
	}

	// R8 rows are one byte per texel, so the stride of pix is the width.
	err = b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		b.device.DestroyTextureView(view)
		b.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: write glyph texture: %w", err)
	}

	handle := gfx.TextureHandle(b.handle())
	b.textures[handle] = &texture{tex: tex, view: view, params: params}
	return handle, nil
}

// DeleteTexture implements gfx.Device.
func (b *Backend) DeleteTexture(tex gfx.TextureHandle) {
	t, ok := b.textures[tex]
	if !ok {
		return
	}
	delete(b.textures, tex)
	if t.group != nil {
		b.device.DestroyBindGroup(t.group)
	}
	b.device.DestroyTextureView(t.view)
	b.device.DestroyTexture(t.tex)
}

// AllocateVertexArray implements gfx.Device. Vertex arrays are CPU-side
// attribute maps; the buffers are bound per draw.
func (b *Backend) AllocateVertexArray() (gfx.VertexArrayHandle, error) {
	if b.closed {
		return 0, ErrClosed
	}
	h := gfx.VertexArrayHandle(b.handle())
	b.vaos[h] = &vertexArray{}
	return h, nil
}

// DeleteVertexArray implements gfx.Device.
func (b *Backend) DeleteVertexArray(vao gfx.VertexArrayHandle) {
	delete(b.vaos, vao)
}

// AllocateDynamicBuffer implements gfx.Device.
func (b *Backend) AllocateDynamicBuffer(size int) (gfx.BufferHandle, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if size <= 0 || size%4 != 0 {
		return 0, fmt.Errorf("wgpu: invalid buffer size %d", size)
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyphquad_vertices",
		Size:  uint64(size),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create vertex buffer: %w", err)
	}
	h := gfx.BufferHandle(b.handle())
	b.buffers[h] = &buffer{buf: buf, size: size}
	return h, nil
}

// UpdateBuffer implements gfx.Device.
func (b *Backend) UpdateBuffer(buf gfx.BufferHandle, offset int, data []byte) error {
	vb, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if offset < 0 || offset+len(data) > vb.size {
		return fmt.Errorf("wgpu: %d bytes at %d overflow %d-byte buffer", len(data), offset, vb.size)
	}
	if err := b.queue.WriteBuffer(vb.buf, uint64(offset), data); err != nil {
		return fmt.Errorf("wgpu: write buffer %d: %w", buf, err)
	}
	return nil
}

// DeleteBuffer implements gfx.Device.
func (b *Backend) DeleteBuffer(buf gfx.BufferHandle) {
	vb, ok := b.buffers[buf]
	if !ok {
		return
	}
	delete(b.buffers, buf)
	b.device.DestroyBuffer(vb.buf)
}

// BindVertexArray implements gfx.Device.
func (b *Backend) BindVertexArray(vao gfx.VertexArrayHandle) { b.boundVAO = vao }

// BindTexture implements gfx.Device.
func (b *Backend) BindTexture(tex gfx.TextureHandle) { b.boundTex = tex }

// SetDepthTest implements gfx.Device. The target has no depth attachment,
// so the state is only tracked.
func (b *Backend) SetDepthTest(enabled bool) { b.depth = enabled }

// DepthTest implements gfx.Device.
func (b *Backend) DepthTest() bool { return b.depth }

// UseProgram implements gfx.ShaderManager.
func (b *Backend) UseProgram(kind gfx.ProgramKind) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("wgpu: unsupported program %v", kind)
	}
	b.program = kind
	return nil
}

// SetUniform implements gfx.ShaderManager.
func (b *Backend) SetUniform(kind gfx.ProgramKind, name string, value gfx.Uniform) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("wgpu: unsupported program %v", kind)
	}
	switch name {
	case gfx.UniformColor:
		v, ok := value.(gfx.Vec4)
		if !ok {
			return fmt.Errorf("wgpu: %s must be Vec4, got %T", name, value)
		}
		b.color = v
	case gfx.UniformProjection:
		m, ok := value.(gfx.Mat4)
		if !ok {
			return fmt.Errorf("wgpu: %s must be Mat4, got %T", name, value)
		}
		b.projection = m
	default:
		return fmt.Errorf("wgpu: text program has no uniform %q", name)
	}
	return nil
}

// ConfigureVertexAttribute implements gfx.ShaderManager.
func (b *Backend) ConfigureVertexAttribute(vao gfx.VertexArrayHandle, buf gfx.BufferHandle, kind gfx.ProgramKind, attribute string) error {
	va, ok := b.vaos[vao]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	if _, ok := b.buffers[buf]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	switch attribute {
	case gfx.AttribPosition:
		va.position = buf
	case gfx.AttribTexCoord:
		va.texCoord = buf
	default:
		return fmt.Errorf("wgpu: %v program has no attribute %q", kind, attribute)
	}
	return nil
}

// StopUsingProgram implements gfx.ShaderManager.
func (b *Backend) StopUsingProgram() { b.program = 0 }

// DrawTriangles implements gfx.Device.
func (b *Backend) DrawTriangles(vertexCount int) error {
	if b.closed {
		return ErrClosed
	}
	if b.program != gfx.ProgramText {
		return ErrNoProgram
	}
	va, ok := b.vaos[b.boundVAO]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, b.boundVAO)
	}
	pos, ok := b.buffers[va.position]
	if !ok {
		return fmt.Errorf("%w: position buffer %d", ErrUnknownHandle, va.position)
	}
	uv, ok := b.buffers[va.texCoord]
	if !ok {
		return fmt.Errorf("%w: texcoord buffer %d", ErrUnknownHandle, va.texCoord)
	}
	tex, ok := b.textures[b.boundTex]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownHandle, b.boundTex)
	}
	need := vertexCount * gfx.AttribComponents * 4
	if vertexCount < 0 || need > pos.size || need > uv.size {
		return fmt.Errorf("wgpu: %d vertices exceed bound buffers", vertexCount)
	}

	group, err := b.bindGroup(tex)
	if err != nil {
		return err
	}
	if err := b.writeUniforms(); err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glyphquad_draw_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyphquad_draw"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	attachment := hal.RenderPassColorAttachment{
		View:    b.targetView,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if b.pendingClear != nil {
		attachment.LoadOp = gputypes.LoadOpClear
		attachment.ClearValue = *b.pendingClear
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "glyphquad_text_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	rp.SetPipeline(b.pipeline.pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(slotPosition, pos.buf, 0)
	rp.SetVertexBuffer(slotTexCoord, uv.buf, 0)
	rp.Draw(uint32(vertexCount), 1, 0, 0) //nolint:gosec // checked non-negative
	rp.End()

	if err := b.submit(encoder); err != nil {
		return err
	}
	b.pendingClear = nil
	b.draws++
	return nil
}

// bindGroup returns the bind group of tex, creating it on first use.
func (b *Backend) bindGroup(tex *texture) (hal.BindGroup, error) {
	if tex.group != nil {
		return tex.group, nil
	}
	sampler, err := b.sampler(tex.params)
	if err != nil {
		return nil, err
	}
	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyphquad_text_bind",
		Layout: b.pipeline.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: b.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	tex.group = group
	return group, nil
}

// sampler returns the sampler for params, creating it on first use.
func (b *Backend) sampler(params gfx.SamplerParams) (hal.Sampler, error) {
	if s, ok := b.samplers[params]; ok {
		return s, nil
	}
	address := gputypes.AddressModeClampToEdge
	if params.Wrap == gfx.WrapRepeat {
		address = gputypes.AddressModeRepeat
	}
	filter := func(m gfx.FilterMode) gputypes.FilterMode {
		if m == gfx.FilterNearest {
			return gputypes.FilterModeNearest
		}
		return gputypes.FilterModeLinear
	}
	s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glyphquad_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter(params.MagFilter),
		MinFilter:    filter(params.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	b.samplers[params] = s
	return s, nil
}

// writeUniforms uploads the projection and text color.
func (b *Backend) writeUniforms() error {
	var data [uniformSize]byte
	n := gfx.PutFloat32s(data[:], b.projection[:]...)
	gfx.PutFloat32s(data[n:], b.color[:]...)
	if err := b.queue.WriteBuffer(b.uniformBuf, 0, data[:]); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	return nil
}

// submit finishes encoder, submits it and waits for completion.
func (b *Backend) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	index, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	return b.wait(index)
}

// wait polls the queue until submission index has completed.
func (b *Backend) wait(index uint64) error {
	deadline := time.Now().Add(b.opts.timeout)
	for b.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrTimeout, index, b.opts.timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// ReadPixels copies the render target to the CPU. The target must use an
// RGBA8 format for the result to be meaningful.
func (b *Backend) ReadPixels() (*image.RGBA, error) {
	if b.closed {
		return nil, ErrClosed
	}
	w, h := b.width, b.height
	bytesPerRow := w * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyphquad_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glyphquad_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyphquad_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// A target that was never drawn gets its pending clear first.
	if b.pendingClear != nil {
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "glyphquad_clear_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       b.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: *b.pendingClear,
			}},
		})
		rp.End()
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(b.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: b.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	if err := b.submit(encoder); err != nil {
		return nil, err
	}
	b.pendingClear = nil

	mapping, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	readback := make([]byte, size)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := b.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := range int(h) {
		src := readback[row*int(aligned):]
		copy(img.Pix[row*img.Stride:(row+1)*img.Stride], src[:bytesPerRow])
	}
	return img, nil
}
