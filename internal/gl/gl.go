package gl

import "unsafe"

const (
	// ColorBufferBit is a mask used with Clear to clear the color buffer.
	ColorBufferBit = 0x00004000

	// Triangles draws every three vertices as an independent triangle.
	Triangles = 0x0004

	// Float is the vertex attribute component type for 32-bit floats.
	Float = 0x1406

	// ArrayBuffer is the buffer target for vertex attribute data.
	ArrayBuffer = 0x8892
	// StaticDraw hints that buffer contents are set once and drawn many times.
	StaticDraw = 0x88E4

	// Shader object kinds accepted by CreateShader.
	FragmentShader = 0x8B30
	VertexShader   = 0x8B31

	// Shader and program parameters for GetShaderiv / GetProgramiv.
	CompileStatus   = 0x8B81
	LinkStatus      = 0x8B82
	InfoLogLength   = 0x8B84
	AttachedShaders = 0x8B85

	// GetString parameters.
	//
	// Vendor returns the company responsible for the GL implementation.
	Vendor = 0x1F00
	// Renderer names the renderer, usually the GPU model.
	Renderer = 0x1F01
	// Version returns the GL version string of the current context.
	Version = 0x1F02
	// ShadingLanguageVersion returns the supported GLSL version.
	ShadingLanguageVersion = 0x8B8C
)

// OpenGL describes the subset of OpenGL (ES 2.0 level) entry points used by
// this module.
//
// All methods operate on the GL context current on the calling thread. Slices
// passed in must stay valid for the duration of the call only.
type OpenGL interface {
	// ClearColor sets the clear color used by Clear when clearing the color buffer.
	ClearColor(r, g, b, a float32)

	// Clear clears buffers to preset values (e.g., ColorBufferBit).
	Clear(mask uint32)

	// Viewport sets the affine transformation of x and y from normalized device
	// coordinates to window coordinates.
	Viewport(x, y, width, height int32)

	// GetString returns a string describing a GL property for the current context.
	//
	// If the name is not recognized or no context is current, implementations may
	// return the empty string.
	GetString(name uint32) string

	// CreateShader creates an empty shader object of the given kind and
	// returns its name, or 0 on failure.
	CreateShader(kind uint32) uint32

	// ShaderSource replaces the source of a shader. The source is expected to
	// be NUL-terminated.
	ShaderSource(shader uint32, source []byte)

	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32, params *int32)

	// GetShaderInfoLog copies at most len(buf) bytes of the shader info log,
	// including the terminating NUL, and returns the number of bytes written
	// excluding the NUL.
	GetShaderInfoLog(shader uint32, buf []byte) int32

	DeleteShader(shader uint32)

	// CreateProgram creates an empty program object and returns its name, or
	// 0 on failure.
	CreateProgram() uint32

	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32, params *int32)

	// GetProgramInfoLog behaves like GetShaderInfoLog for program objects.
	GetProgramInfoLog(program uint32, buf []byte) int32

	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// GetAttribLocation returns the location of a vertex attribute, or -1
	// if the linked program has no active attribute with that name.
	GetAttribLocation(program uint32, name string) int32

	// GetUniformLocation returns the location of a uniform, or -1 if the
	// linked program has no active uniform with that name.
	GetUniformLocation(program uint32, name string) int32

	Uniform4f(location int32, v0, v1, v2, v3 float32)

	GenBuffers(n int32, buffers *uint32)
	DeleteBuffers(n int32, buffers *uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, data unsafe.Pointer, usage uint32)

	// Vertex array objects are optional; callers must check
	// Table.Has(VertexArrayObjects) before using them.
	GenVertexArrays(n int32, arrays *uint32)
	DeleteVertexArrays(n int32, arrays *uint32)
	BindVertexArray(array uint32)

	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)

	DrawArrays(mode uint32, first, count int32)
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}
