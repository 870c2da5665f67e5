// Package recording provides a gfx.Device and gfx.ShaderManager that
// record every call as a typed command instead of drawing.
//
// Commands are stored in call order and can be inspected after the fact.
// At each DrawTriangles the recorder also snapshots the bound buffers,
// texture, uniforms and depth state as a DrawCall, so tests can check the
// exact geometry a renderer produced.
//
// # Example
//
//	rec := recording.NewRecorder()
//	table, _ := glyphquad.BuildTable(rec, res, 48)
//	r, _ := glyphquad.NewRenderer(table, vp, rec, rec)
//	_ = r.Render("Hi", glyphquad.Centered(0, 0), 1, color.White)
//	for _, d := range rec.Draws() {
//	    fmt.Println(d.Texture, d.Positions)
//	}
//
// Calls can be made to fail with FailOn to exercise error paths.
package recording

import "github.com/gogpu/glyphquad/gfx"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Resource commands
	CmdUploadTexture       CommandType = iota // Create a texture
	CmdDeleteTexture                          // Release a texture
	CmdAllocateVertexArray                    // Create a vertex array
	CmdDeleteVertexArray                      // Release a vertex array
	CmdAllocateBuffer                         // Create a dynamic buffer
	CmdUpdateBuffer                           // Overwrite buffer contents
	CmdDeleteBuffer                           // Release a buffer

	// State commands
	CmdBindVertexArray // Bind or unbind a vertex array
	CmdBindTexture     // Bind or unbind a texture
	CmdSetDepthTest    // Enable or disable depth testing

	// Drawing commands
	CmdDrawTriangles // Draw a triangle list

	// Shader commands
	CmdUseProgram         // Make a program current
	CmdSetUniform         // Assign a uniform
	CmdConfigureAttribute // Attach a buffer to a vertex attribute
	CmdStopUsingProgram   // Leave no program current
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdUploadTexture:       "UploadTexture",
	CmdDeleteTexture:       "DeleteTexture",
	CmdAllocateVertexArray: "AllocateVertexArray",
	CmdDeleteVertexArray:   "DeleteVertexArray",
	CmdAllocateBuffer:      "AllocateBuffer",
	CmdUpdateBuffer:        "UpdateBuffer",
	CmdDeleteBuffer:        "DeleteBuffer",
	CmdBindVertexArray:     "BindVertexArray",
	CmdBindTexture:         "BindTexture",
	CmdSetDepthTest:        "SetDepthTest",
	CmdDrawTriangles:       "DrawTriangles",
	CmdUseProgram:          "UseProgram",
	CmdSetUniform:          "SetUniform",
	CmdConfigureAttribute:  "ConfigureAttribute",
	CmdStopUsingProgram:    "StopUsingProgram",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Resource Commands
// --------------------------------------------------------------------------

// UploadTextureCommand records a texture creation.
type UploadTextureCommand struct {
	Texture       gfx.TextureHandle
	Width, Height int
	Params        gfx.SamplerParams
}

// Type implements Command.
func (UploadTextureCommand) Type() CommandType { return CmdUploadTexture }

// DeleteTextureCommand records a texture release.
type DeleteTextureCommand struct {
	Texture gfx.TextureHandle
}

// Type implements Command.
func (DeleteTextureCommand) Type() CommandType { return CmdDeleteTexture }

// AllocateVertexArrayCommand records a vertex array creation.
type AllocateVertexArrayCommand struct {
	VertexArray gfx.VertexArrayHandle
}

// Type implements Command.
func (AllocateVertexArrayCommand) Type() CommandType { return CmdAllocateVertexArray }

// DeleteVertexArrayCommand records a vertex array release.
type DeleteVertexArrayCommand struct {
	VertexArray gfx.VertexArrayHandle
}

// Type implements Command.
func (DeleteVertexArrayCommand) Type() CommandType { return CmdDeleteVertexArray }

// AllocateBufferCommand records a dynamic buffer creation.
type AllocateBufferCommand struct {
	Buffer gfx.BufferHandle
	Size   int
}

// Type implements Command.
func (AllocateBufferCommand) Type() CommandType { return CmdAllocateBuffer }

// UpdateBufferCommand records a buffer write of Size bytes at Offset.
type UpdateBufferCommand struct {
	Buffer gfx.BufferHandle
	Offset int
	Size   int
}

// Type implements Command.
func (UpdateBufferCommand) Type() CommandType { return CmdUpdateBuffer }

// DeleteBufferCommand records a buffer release.
type DeleteBufferCommand struct {
	Buffer gfx.BufferHandle
}

// Type implements Command.
func (DeleteBufferCommand) Type() CommandType { return CmdDeleteBuffer }

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// BindVertexArrayCommand records a vertex array binding. 0 unbinds.
type BindVertexArrayCommand struct {
	VertexArray gfx.VertexArrayHandle
}

// Type implements Command.
func (BindVertexArrayCommand) Type() CommandType { return CmdBindVertexArray }

// BindTextureCommand records a texture binding. 0 unbinds.
type BindTextureCommand struct {
	Texture gfx.TextureHandle
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// SetDepthTestCommand records a depth test change.
type SetDepthTestCommand struct {
	Enabled bool
}

// Type implements Command.
func (SetDepthTestCommand) Type() CommandType { return CmdSetDepthTest }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// DrawTrianglesCommand records a draw call.
type DrawTrianglesCommand struct {
	VertexCount int
}

// Type implements Command.
func (DrawTrianglesCommand) Type() CommandType { return CmdDrawTriangles }

// --------------------------------------------------------------------------
// Shader Commands
// --------------------------------------------------------------------------

// UseProgramCommand records a program activation.
type UseProgramCommand struct {
	Program gfx.ProgramKind
}

// Type implements Command.
func (UseProgramCommand) Type() CommandType { return CmdUseProgram }

// SetUniformCommand records a uniform assignment.
type SetUniformCommand struct {
	Program gfx.ProgramKind
	Name    string
	Value   gfx.Uniform
}

// Type implements Command.
func (SetUniformCommand) Type() CommandType { return CmdSetUniform }

// ConfigureAttributeCommand records a vertex attribute registration.
type ConfigureAttributeCommand struct {
	VertexArray gfx.VertexArrayHandle
	Buffer      gfx.BufferHandle
	Program     gfx.ProgramKind
	Attribute   string
}

// Type implements Command.
func (ConfigureAttributeCommand) Type() CommandType { return CmdConfigureAttribute }

// StopUsingProgramCommand records a program deactivation.
type StopUsingProgramCommand struct{}

// Type implements Command.
func (StopUsingProgramCommand) Type() CommandType { return CmdStopUsingProgram }

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// Texture is the recorded content of an uploaded texture.
type Texture struct {
	Width, Height int
	Pix           []byte
	Params        gfx.SamplerParams
}

// DrawCall is the state captured at one DrawTriangles call.
type DrawCall struct {
	VertexCount int
	VertexArray gfx.VertexArrayHandle
	Texture     gfx.TextureHandle
	Program     gfx.ProgramKind
	DepthTest   bool

	// Positions and TexCoords hold the float32 contents of the buffers
	// attached to the position and texcoord attributes of the vertex array.
	Positions []float32
	TexCoords []float32

	// Color and Projection are the current textColor and projection
	// uniforms of Program, or zero if unset.
	Color      gfx.Vec4
	Projection gfx.Mat4
}
