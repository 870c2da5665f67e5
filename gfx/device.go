package gfx

import "fmt"

// TextureHandle names a texture owned by a Device.
type TextureHandle uint32

// BufferHandle names a vertex buffer owned by a Device.
type BufferHandle uint32

// VertexArrayHandle names a vertex array (attribute binding set) owned by a Device.
type VertexArrayHandle uint32

// WrapMode is the texture addressing mode outside [0, 1].
type WrapMode uint8

const (
	// WrapClampToEdge clamps coordinates to the edge texels.
	WrapClampToEdge WrapMode = iota
	// WrapRepeat tiles the texture.
	WrapRepeat
)

// String returns the wrap mode name.
func (m WrapMode) String() string {
	switch m {
	case WrapClampToEdge:
		return "ClampToEdge"
	case WrapRepeat:
		return "Repeat"
	default:
		return fmt.Sprintf("WrapMode(%d)", m)
	}
}

// FilterMode is the texture sampling filter.
type FilterMode uint8

const (
	// FilterLinear interpolates between neighbouring texels.
	FilterLinear FilterMode = iota
	// FilterNearest picks the closest texel.
	FilterNearest
)

// String returns the filter mode name.
func (m FilterMode) String() string {
	switch m {
	case FilterLinear:
		return "Linear"
	case FilterNearest:
		return "Nearest"
	default:
		return fmt.Sprintf("FilterMode(%d)", m)
	}
}

// SamplerParams configures how a texture is sampled.
type SamplerParams struct {
	Wrap      WrapMode
	MinFilter FilterMode
	MagFilter FilterMode
}

// GlyphSampler is the sampling used for glyph bitmaps: edge clamping and
// linear filtering in both directions, no mipmaps.
func GlyphSampler() SamplerParams {
	return SamplerParams{
		Wrap:      WrapClampToEdge,
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
	}
}

// Device is the texture, buffer and draw capability of a GPU context.
//
// Implementations are not safe for concurrent use; the underlying graphics
// context is single-threaded.
type Device interface {
	// UploadTexture creates a width x height single-channel texture from pix.
	// Each byte is one texel's intensity, rows top-down, stride == width.
	// Zero-sized textures are valid.
	UploadTexture(width, height int, pix []byte, params SamplerParams) (TextureHandle, error)

	// DeleteTexture releases a texture. Deleting handle 0 is a no-op.
	DeleteTexture(tex TextureHandle)

	// AllocateVertexArray creates an empty vertex array.
	AllocateVertexArray() (VertexArrayHandle, error)

	// DeleteVertexArray releases a vertex array.
	DeleteVertexArray(vao VertexArrayHandle)

	// AllocateDynamicBuffer creates a vertex buffer of size bytes intended
	// for frequent updates. Its contents are undefined until written.
	AllocateDynamicBuffer(size int) (BufferHandle, error)

	// UpdateBuffer overwrites len(data) bytes of buf starting at offset.
	UpdateBuffer(buf BufferHandle, offset int, data []byte) error

	// DeleteBuffer releases a buffer.
	DeleteBuffer(buf BufferHandle)

	// BindVertexArray makes vao current. 0 unbinds.
	BindVertexArray(vao VertexArrayHandle)

	// BindTexture binds tex to texture unit 0. 0 unbinds.
	BindTexture(tex TextureHandle)

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(enabled bool)

	// DepthTest reports whether depth testing is enabled.
	DepthTest() bool

	// DrawTriangles draws vertexCount vertices of the bound vertex array as
	// a triangle list, using the current program and bound texture.
	DrawTriangles(vertexCount int) error
}

// ProgramKind selects one of the shader programs a ShaderManager knows.
type ProgramKind uint8

const (
	// ProgramText samples a single-channel glyph texture as coverage and
	// multiplies it with the textColor uniform.
	ProgramText ProgramKind = iota + 1
)

// String returns the program name.
func (k ProgramKind) String() string {
	switch k {
	case ProgramText:
		return "text"
	default:
		return fmt.Sprintf("ProgramKind(%d)", k)
	}
}

// Uniform and attribute names of ProgramText.
const (
	UniformColor      = "textColor"
	UniformProjection = "projection"

	AttribPosition = "position"
	AttribTexCoord = "texcoord"
)

// ShaderManager compiles, selects and configures shader programs.
type ShaderManager interface {
	// UseProgram makes the program of the given kind current.
	UseProgram(kind ProgramKind) error

	// SetUniform assigns a uniform of the given program.
	SetUniform(kind ProgramKind, name string, value Uniform) error

	// ConfigureVertexAttribute records in vao that the named attribute of
	// the program reads tightly packed vec2 float32 values from buf.
	ConfigureVertexAttribute(vao VertexArrayHandle, buf BufferHandle, kind ProgramKind, attribute string) error

	// StopUsingProgram leaves no program current.
	StopUsingProgram()
}
