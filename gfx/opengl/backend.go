//go:build gl

package opengl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/glyphquad"
	"github.com/gogpu/glyphquad/gfx"
)

// ErrUnknownHandle is returned for a handle the backend never issued.
var ErrUnknownHandle = errors.New("opengl: unknown handle")

const vertexShader = `#version 330 core
layout (location = 0) in vec2 position;
layout (location = 1) in vec2 texcoord;
out vec2 uv;
uniform mat4 projection;
void main() {
    gl_Position = projection * vec4(position, 0.0, 1.0);
    uv = texcoord;
}
`

const fragmentShader = `#version 330 core
in vec2 uv;
out vec4 color;
uniform sampler2D glyph;
uniform vec4 textColor;
void main() {
    color = vec4(textColor.rgb, textColor.a * texture(glyph, uv).r);
}
`

var attribLocations = map[string]uint32{
	gfx.AttribPosition: 0,
	gfx.AttribTexCoord: 1,
}

// Backend drives the current OpenGL context.
type Backend struct {
	program  uint32
	uniforms map[string]int32

	buffers map[gfx.BufferHandle]int
	depth   bool
}

var (
	_ gfx.Device        = (*Backend)(nil)
	_ gfx.ShaderManager = (*Backend)(nil)
)

// New loads the GL entry points and compiles the text program.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	program, err := buildProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}
	b := &Backend{
		program:  program,
		uniforms: make(map[string]int32, 3),
		buffers:  make(map[gfx.BufferHandle]int),
		depth:    gl.IsEnabled(gl.DEPTH_TEST),
	}
	for _, name := range []string{gfx.UniformColor, gfx.UniformProjection, "glyph"} {
		b.uniforms[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	gl.UseProgram(program)
	gl.Uniform1i(b.uniforms["glyph"], 0)
	gl.UseProgram(0)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	glyphquad.Logger().Debug("opengl backend ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return b, nil
}

// Close deletes the text program.
func (b *Backend) Close() {
	if b.program != 0 {
		gl.DeleteProgram(b.program)
		b.program = 0
	}
}

func buildProgram(vertexSource, fragmentSource string) (uint32, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("opengl: link text program: %s", log)
	}
	return program, nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("opengl: compile shader: %s", log)
	}
	return shader, nil
}

func glWrap(m gfx.WrapMode) int32 {
	if m == gfx.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func glFilter(m gfx.FilterMode) int32 {
	if m == gfx.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

// UploadTexture implements gfx.Device.
func (b *Backend) UploadTexture(width, height int, pix []byte, params gfx.SamplerParams) (gfx.TextureHandle, error) {
	if width < 0 || height < 0 || len(pix) < width*height {
		return 0, fmt.Errorf("opengl: texture %dx%d with %d bytes", width, height, len(pix))
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	// Glyph rows are tightly packed single bytes.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var ptr unsafe.Pointer
	if width*height > 0 {
		ptr = gl.Ptr(pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(width), int32(height), 0, gl.RED, gl.UNSIGNED_BYTE, ptr) //nolint:gosec // validated non-negative
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(params.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(params.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(params.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(params.MagFilter))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("opengl: upload texture: error 0x%x", code)
	}
	return gfx.TextureHandle(tex), nil
}

// DeleteTexture implements gfx.Device.
func (b *Backend) DeleteTexture(tex gfx.TextureHandle) {
	if tex == 0 {
		return
	}
	name := uint32(tex)
	gl.DeleteTextures(1, &name)
}

// AllocateVertexArray implements gfx.Device.
func (b *Backend) AllocateVertexArray() (gfx.VertexArrayHandle, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, errors.New("opengl: glGenVertexArrays returned 0")
	}
	return gfx.VertexArrayHandle(vao), nil
}

// DeleteVertexArray implements gfx.Device.
func (b *Backend) DeleteVertexArray(vao gfx.VertexArrayHandle) {
	name := uint32(vao)
	gl.DeleteVertexArrays(1, &name)
}

// AllocateDynamicBuffer implements gfx.Device.
func (b *Backend) AllocateDynamicBuffer(size int) (gfx.BufferHandle, error) {
	if size <= 0 {
		return 0, fmt.Errorf("opengl: invalid buffer size %d", size)
	}
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	h := gfx.BufferHandle(buf)
	b.buffers[h] = size
	return h, nil
}

// UpdateBuffer implements gfx.Device.
func (b *Backend) UpdateBuffer(buf gfx.BufferHandle, offset int, data []byte) error {
	size, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if offset < 0 || offset+len(data) > size {
		return fmt.Errorf("opengl: %d bytes at %d overflow %d-byte buffer", len(data), offset, size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// DeleteBuffer implements gfx.Device.
func (b *Backend) DeleteBuffer(buf gfx.BufferHandle) {
	if _, ok := b.buffers[buf]; !ok {
		return
	}
	delete(b.buffers, buf)
	name := uint32(buf)
	gl.DeleteBuffers(1, &name)
}

// BindVertexArray implements gfx.Device.
func (b *Backend) BindVertexArray(vao gfx.VertexArrayHandle) { gl.BindVertexArray(uint32(vao)) }

// BindTexture implements gfx.Device.
func (b *Backend) BindTexture(tex gfx.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// SetDepthTest implements gfx.Device.
func (b *Backend) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	b.depth = enabled
}

// DepthTest implements gfx.Device.
func (b *Backend) DepthTest() bool { return b.depth }

// DrawTriangles implements gfx.Device.
func (b *Backend) DrawTriangles(vertexCount int) error {
	if vertexCount < 0 {
		return fmt.Errorf("opengl: negative vertex count %d", vertexCount)
	}
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount)) //nolint:gosec // checked non-negative
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl: draw: error 0x%x", code)
	}
	return nil
}

// UseProgram implements gfx.ShaderManager.
func (b *Backend) UseProgram(kind gfx.ProgramKind) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("opengl: unsupported program %v", kind)
	}
	gl.UseProgram(b.program)
	return nil
}

// SetUniform implements gfx.ShaderManager. The program must be current.
func (b *Backend) SetUniform(kind gfx.ProgramKind, name string, value gfx.Uniform) error {
	if kind != gfx.ProgramText {
		return fmt.Errorf("opengl: unsupported program %v", kind)
	}
	loc, ok := b.uniforms[name]
	if !ok || name == "glyph" {
		return fmt.Errorf("opengl: text program has no uniform %q", name)
	}
	switch v := value.(type) {
	case gfx.Vec4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case gfx.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	default:
		return fmt.Errorf("opengl: unsupported uniform type %T", value)
	}
	return nil
}

// ConfigureVertexAttribute implements gfx.ShaderManager.
func (b *Backend) ConfigureVertexAttribute(vao gfx.VertexArrayHandle, buf gfx.BufferHandle, kind gfx.ProgramKind, attribute string) error {
	loc, ok := attribLocations[attribute]
	if !ok {
		return fmt.Errorf("opengl: %v program has no attribute %q", kind, attribute)
	}
	if _, ok := b.buffers[buf]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	gl.BindVertexArray(uint32(vao))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointer(loc, gfx.AttribComponents, gl.FLOAT, false, gfx.AttribComponents*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return nil
}

// StopUsingProgram implements gfx.ShaderManager.
func (b *Backend) StopUsingProgram() { gl.UseProgram(0) }
