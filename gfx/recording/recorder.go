package recording

import (
	"errors"
	"fmt"

	"github.com/gogpu/glyphquad/gfx"
)

// Sentinel errors reported for invalid use of the recorder.
var (
	// ErrUnknownHandle is returned for a handle the recorder never issued
	// or already released.
	ErrUnknownHandle = errors.New("recording: unknown handle")

	// ErrOutOfRange is returned by UpdateBuffer for a write past the end
	// of the buffer.
	ErrOutOfRange = errors.New("recording: buffer write out of range")

	// ErrNoProgram is returned when drawing or setting uniforms without the
	// matching program in use.
	ErrNoProgram = errors.New("recording: program not in use")

	// ErrNoVertexArray is returned by DrawTriangles with no vertex array bound.
	ErrNoVertexArray = errors.New("recording: no vertex array bound")
)

// Recorder implements gfx.Device and gfx.ShaderManager by recording calls.
// Handles of all kinds are issued from one counter starting at 1.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	commands []Command
	draws    []DrawCall

	next     uint32
	textures map[gfx.TextureHandle]*Texture
	buffers  map[gfx.BufferHandle][]byte
	vaos     map[gfx.VertexArrayHandle]map[string]gfx.BufferHandle

	boundVAO gfx.VertexArrayHandle
	boundTex gfx.TextureHandle
	depth    bool
	program  gfx.ProgramKind
	uniforms map[gfx.ProgramKind]map[string]gfx.Uniform

	calls         map[CommandType]int
	failures      map[CommandType]failure
	doubleDeletes int
}

type failure struct {
	after int
	err   error
}

var (
	_ gfx.Device        = (*Recorder)(nil)
	_ gfx.ShaderManager = (*Recorder)(nil)
)

// NewRecorder creates an empty Recorder with depth testing enabled, the
// default state of a fresh 3D context.
func NewRecorder() *Recorder {
	return &Recorder{
		commands: make([]Command, 0, 256),
		textures: make(map[gfx.TextureHandle]*Texture),
		buffers:  make(map[gfx.BufferHandle][]byte),
		vaos:     make(map[gfx.VertexArrayHandle]map[string]gfx.BufferHandle),
		depth:    true,
		uniforms: make(map[gfx.ProgramKind]map[string]gfx.Uniform),
		calls:    make(map[CommandType]int),
		failures: make(map[CommandType]failure),
	}
}

// FailOn makes every call of type t fail with err once after calls of
// that type have been attempted. FailOn(CmdUploadTexture, 0, err) fails
// all uploads.
// Only calls that return an error can fail.
func (r *Recorder) FailOn(t CommandType, after int, err error) {
	r.failures[t] = failure{after: after, err: err}
}

// check counts a call of type t and returns an injected error, if any.
func (r *Recorder) check(t CommandType) error {
	n := r.calls[t]
	r.calls[t] = n + 1
	if f, ok := r.failures[t]; ok && n >= f.after {
		return f.err
	}
	return nil
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

// --------------------------------------------------------------------------
// gfx.Device
// --------------------------------------------------------------------------

// UploadTexture implements gfx.Device. The pixels are copied.
func (r *Recorder) UploadTexture(width, height int, pix []byte, params gfx.SamplerParams) (gfx.TextureHandle, error) {
	if err := r.check(CmdUploadTexture); err != nil {
		return 0, err
	}
	if width < 0 || height < 0 || len(pix) < width*height {
		return 0, fmt.Errorf("recording: texture %dx%d with %d bytes", width, height, len(pix))
	}
	h := gfx.TextureHandle(r.handle())
	r.textures[h] = &Texture{
		Width:  width,
		Height: height,
		Pix:    append([]byte(nil), pix[:width*height]...),
		Params: params,
	}
	r.record(UploadTextureCommand{Texture: h, Width: width, Height: height, Params: params})
	return h, nil
}

// DeleteTexture implements gfx.Device.
func (r *Recorder) DeleteTexture(tex gfx.TextureHandle) {
	if tex == 0 {
		return
	}
	if _, ok := r.textures[tex]; !ok {
		r.doubleDeletes++
	}
	delete(r.textures, tex)
	r.record(DeleteTextureCommand{Texture: tex})
}

// AllocateVertexArray implements gfx.Device.
func (r *Recorder) AllocateVertexArray() (gfx.VertexArrayHandle, error) {
	if err := r.check(CmdAllocateVertexArray); err != nil {
		return 0, err
	}
	h := gfx.VertexArrayHandle(r.handle())
	r.vaos[h] = make(map[string]gfx.BufferHandle)
	r.record(AllocateVertexArrayCommand{VertexArray: h})
	return h, nil
}

// DeleteVertexArray implements gfx.Device.
func (r *Recorder) DeleteVertexArray(vao gfx.VertexArrayHandle) {
	if vao == 0 {
		return
	}
	if _, ok := r.vaos[vao]; !ok {
		r.doubleDeletes++
	}
	delete(r.vaos, vao)
	r.record(DeleteVertexArrayCommand{VertexArray: vao})
}

// AllocateDynamicBuffer implements gfx.Device.
func (r *Recorder) AllocateDynamicBuffer(size int) (gfx.BufferHandle, error) {
	if err := r.check(CmdAllocateBuffer); err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("recording: invalid buffer size %d", size)
	}
	h := gfx.BufferHandle(r.handle())
	r.buffers[h] = make([]byte, size)
	r.record(AllocateBufferCommand{Buffer: h, Size: size})
	return h, nil
}

// UpdateBuffer implements gfx.Device.
func (r *Recorder) UpdateBuffer(buf gfx.BufferHandle, offset int, data []byte) error {
	if err := r.check(CmdUpdateBuffer); err != nil {
		return err
	}
	b, ok := r.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if offset < 0 || offset+len(data) > len(b) {
		return fmt.Errorf("%w: %d bytes at %d in %d-byte buffer", ErrOutOfRange, len(data), offset, len(b))
	}
	copy(b[offset:], data)
	r.record(UpdateBufferCommand{Buffer: buf, Offset: offset, Size: len(data)})
	return nil
}

// DeleteBuffer implements gfx.Device.
func (r *Recorder) DeleteBuffer(buf gfx.BufferHandle) {
	if buf == 0 {
		return
	}
	if _, ok := r.buffers[buf]; !ok {
		r.doubleDeletes++
	}
	delete(r.buffers, buf)
	r.record(DeleteBufferCommand{Buffer: buf})
}

// BindVertexArray implements gfx.Device.
func (r *Recorder) BindVertexArray(vao gfx.VertexArrayHandle) {
	r.boundVAO = vao
	r.record(BindVertexArrayCommand{VertexArray: vao})
}

// BindTexture implements gfx.Device.
func (r *Recorder) BindTexture(tex gfx.TextureHandle) {
	r.boundTex = tex
	r.record(BindTextureCommand{Texture: tex})
}

// SetDepthTest implements gfx.Device.
func (r *Recorder) SetDepthTest(enabled bool) {
	r.depth = enabled
	r.record(SetDepthTestCommand{Enabled: enabled})
}

// DepthTest implements gfx.Device.
func (r *Recorder) DepthTest() bool { return r.depth }

// DrawTriangles implements gfx.Device and snapshots the draw state.
func (r *Recorder) DrawTriangles(vertexCount int) error {
	if err := r.check(CmdDrawTriangles); err != nil {
		return err
	}
	if r.program == 0 {
		return ErrNoProgram
	}
	attrs, ok := r.vaos[r.boundVAO]
	if r.boundVAO == 0 || !ok {
		return ErrNoVertexArray
	}

	d := DrawCall{
		VertexCount: vertexCount,
		VertexArray: r.boundVAO,
		Texture:     r.boundTex,
		Program:     r.program,
		DepthTest:   r.depth,
		Positions:   gfx.Float32s(r.buffers[attrs[gfx.AttribPosition]]),
		TexCoords:   gfx.Float32s(r.buffers[attrs[gfx.AttribTexCoord]]),
	}
	if u, ok := r.uniforms[r.program][gfx.UniformColor].(gfx.Vec4); ok {
		d.Color = u
	}
	if u, ok := r.uniforms[r.program][gfx.UniformProjection].(gfx.Mat4); ok {
		d.Projection = u
	}
	r.draws = append(r.draws, d)
	r.record(DrawTrianglesCommand{VertexCount: vertexCount})
	return nil
}

// --------------------------------------------------------------------------
// gfx.ShaderManager
// --------------------------------------------------------------------------

// UseProgram implements gfx.ShaderManager.
func (r *Recorder) UseProgram(kind gfx.ProgramKind) error {
	if err := r.check(CmdUseProgram); err != nil {
		return err
	}
	if kind != gfx.ProgramText {
		return fmt.Errorf("recording: unknown program %v", kind)
	}
	r.program = kind
	r.record(UseProgramCommand{Program: kind})
	return nil
}

// SetUniform implements gfx.ShaderManager. The program must be in use.
func (r *Recorder) SetUniform(kind gfx.ProgramKind, name string, value gfx.Uniform) error {
	if err := r.check(CmdSetUniform); err != nil {
		return err
	}
	if r.program != kind {
		return fmt.Errorf("%w: %v", ErrNoProgram, kind)
	}
	u, ok := r.uniforms[kind]
	if !ok {
		u = make(map[string]gfx.Uniform)
		r.uniforms[kind] = u
	}
	u[name] = value
	r.record(SetUniformCommand{Program: kind, Name: name, Value: value})
	return nil
}

// ConfigureVertexAttribute implements gfx.ShaderManager.
func (r *Recorder) ConfigureVertexAttribute(vao gfx.VertexArrayHandle, buf gfx.BufferHandle, kind gfx.ProgramKind, attribute string) error {
	if err := r.check(CmdConfigureAttribute); err != nil {
		return err
	}
	attrs, ok := r.vaos[vao]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	if _, ok := r.buffers[buf]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if attribute != gfx.AttribPosition && attribute != gfx.AttribTexCoord {
		return fmt.Errorf("recording: %v program has no attribute %q", kind, attribute)
	}
	attrs[attribute] = buf
	r.record(ConfigureAttributeCommand{VertexArray: vao, Buffer: buf, Program: kind, Attribute: attribute})
	return nil
}

// StopUsingProgram implements gfx.ShaderManager.
func (r *Recorder) StopUsingProgram() {
	r.program = 0
	r.record(StopUsingProgramCommand{})
}

// --------------------------------------------------------------------------
// Inspection
// --------------------------------------------------------------------------

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command { return r.commands }

// Types returns the types of the recorded commands in call order.
func (r *Recorder) Types() []CommandType {
	out := make([]CommandType, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.Type()
	}
	return out
}

// Count returns the number of recorded commands of type t.
func (r *Recorder) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Draws returns the snapshot of every successful DrawTriangles call.
func (r *Recorder) Draws() []DrawCall { return r.draws }

// Texture returns the content of a live texture.
func (r *Recorder) Texture(h gfx.TextureHandle) (Texture, bool) {
	t, ok := r.textures[h]
	if !ok {
		return Texture{}, false
	}
	return *t, true
}

// Buffer returns the current content of a live buffer.
func (r *Recorder) Buffer(h gfx.BufferHandle) ([]byte, bool) {
	b, ok := r.buffers[h]
	return b, ok
}

// LiveTextures returns the number of textures not yet deleted.
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// LiveBuffers returns the number of buffers not yet deleted.
func (r *Recorder) LiveBuffers() int { return len(r.buffers) }

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (r *Recorder) LiveVertexArrays() int { return len(r.vaos) }

// DoubleDeletes returns how many deletes named a handle that was not live.
func (r *Recorder) DoubleDeletes() int { return r.doubleDeletes }

// BoundVertexArray returns the currently bound vertex array.
func (r *Recorder) BoundVertexArray() gfx.VertexArrayHandle { return r.boundVAO }

// BoundTexture returns the currently bound texture.
func (r *Recorder) BoundTexture() gfx.TextureHandle { return r.boundTex }

// Program returns the program in use, or 0.
func (r *Recorder) Program() gfx.ProgramKind { return r.program }

// Reset forgets recorded commands and draws. Resources and bindings stay.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.draws = nil
}
