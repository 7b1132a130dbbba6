// Package gl exposes the slice of the OpenGL command set the overlay paints
// with, as plain function fields resolved against whatever context the host
// made current. Production fills an API through Load; tests fill one from an
// in-memory device.
package gl

// API bundles the device entry points the painter and state guard call.
// Every field is non-nil after a successful Load; callers never check.
type API struct {
	GetError func() uint32

	// Shaders and programs.
	CreateShader      func(xtype uint32) uint32
	ShaderSource      func(shader uint32, count int32, src **byte, length *int32)
	CompileShader     func(shader uint32)
	GetShaderiv       func(shader uint32, pname uint32, params *int32)
	GetShaderInfoLog  func(shader uint32, bufSize int32, length *int32, infoLog *byte)
	DeleteShader      func(shader uint32)
	CreateProgram     func() uint32
	AttachShader      func(program, shader uint32)
	LinkProgram       func(program uint32)
	GetProgramiv      func(program uint32, pname uint32, params *int32)
	GetProgramInfoLog func(program uint32, bufSize int32, length *int32, infoLog *byte)
	DetachShader      func(program, shader uint32)
	DeleteProgram     func(program uint32)
	UseProgram        func(program uint32)

	GetUniformLocation func(program uint32, name *byte) int32
	GetAttribLocation  func(program uint32, name *byte) int32
	Uniform1i          func(location int32, v0 int32)
	Uniform2f          func(location int32, v0, v1 float32)

	// Geometry.
	GenVertexArrays         func(n int32, arrays *uint32)
	BindVertexArray         func(array uint32)
	DeleteVertexArrays      func(n int32, arrays *uint32)
	GenBuffers              func(n int32, buffers *uint32)
	BindBuffer              func(target uint32, buffer uint32)
	BufferData              func(target uint32, size int, data *byte, usage uint32)
	BufferSubData           func(target uint32, offset int, size int, data *byte)
	DeleteBuffers           func(n int32, buffers *uint32)
	EnableVertexAttribArray func(index uint32)
	VertexAttribPointer     func(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	DrawElements            func(mode uint32, count int32, xtype uint32, indices uintptr)

	// Textures.
	GenTextures    func(n int32, textures *uint32)
	BindTexture    func(target uint32, texture uint32)
	DeleteTextures func(n int32, textures *uint32)
	TexParameteri  func(target uint32, pname uint32, param int32)
	TexImage2D     func(target uint32, level int32, internalformat int32, width, height int32, border int32, format uint32, xtype uint32, pixels *byte)
	TexSubImage2D  func(target uint32, level int32, xoffset, yoffset int32, width, height int32, format uint32, xtype uint32, pixels *byte)
	PixelStorei    func(pname uint32, param int32)
	ActiveTexture  func(texture uint32)

	// Fixed-function state.
	Enable      func(cap uint32)
	Disable     func(cap uint32)
	IsEnabled   func(cap uint32) bool
	BlendFunc   func(sfactor, dfactor uint32)
	Scissor     func(x, y, width, height int32)
	Viewport    func(x, y, width, height int32)
	GetIntegerv func(pname uint32, data *int32)
}
