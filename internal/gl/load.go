//go:build darwin || linux || windows

package gl

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
)

// openGL binds the shader based OpenGL ES 2.0 subset through purego.
type openGL struct {
	clearColor func(float32, float32, float32, float32)
	clear      func(uint32)
	viewport   func(int32, int32, int32, int32)
	getString  func(uint32) *byte

	// Shader operations
	createShader     func(uint32) uint32
	shaderSource     func(uint32, int32, **byte, *int32)
	compileShader    func(uint32)
	getShaderiv      func(uint32, uint32, *int32)
	getShaderInfoLog func(uint32, int32, *int32, *byte)
	deleteShader     func(uint32)

	// Program operations
	createProgram     func() uint32
	attachShader      func(uint32, uint32)
	detachShader      func(uint32, uint32)
	linkProgram       func(uint32)
	getProgramiv      func(uint32, uint32, *int32)
	getProgramInfoLog func(uint32, int32, *int32, *byte)
	useProgram        func(uint32)
	deleteProgram     func(uint32)

	// Uniform and attribute operations
	getAttribLocation  func(uint32, *byte) int32
	getUniformLocation func(uint32, *byte) int32
	uniform4f          func(int32, float32, float32, float32, float32)

	// Buffer operations
	genBuffers    func(int32, *uint32)
	deleteBuffers func(int32, *uint32)
	bindBuffer    func(uint32, uint32)
	bufferData    func(uint32, int, unsafe.Pointer, uint32)

	// VAO operations, bound only with VertexArrayObjects
	genVertexArrays    func(int32, *uint32)
	deleteVertexArrays func(int32, *uint32)
	bindVertexArray    func(uint32)

	vertexAttribPointer     func(uint32, int32, uint32, bool, int32, uintptr)
	enableVertexAttribArray func(uint32)

	// Drawing
	drawArrays func(uint32, int32, int32)
}

type binding struct {
	name string
	dst  interface{}
}

func (gl *openGL) required() []binding {
	return []binding{
		{"glClearColor", &gl.clearColor},
		{"glClear", &gl.clear},
		{"glViewport", &gl.viewport},
		{"glGetString", &gl.getString},
		{"glCreateShader", &gl.createShader},
		{"glShaderSource", &gl.shaderSource},
		{"glCompileShader", &gl.compileShader},
		{"glGetShaderiv", &gl.getShaderiv},
		{"glGetShaderInfoLog", &gl.getShaderInfoLog},
		{"glDeleteShader", &gl.deleteShader},
		{"glCreateProgram", &gl.createProgram},
		{"glAttachShader", &gl.attachShader},
		{"glDetachShader", &gl.detachShader},
		{"glLinkProgram", &gl.linkProgram},
		{"glGetProgramiv", &gl.getProgramiv},
		{"glGetProgramInfoLog", &gl.getProgramInfoLog},
		{"glUseProgram", &gl.useProgram},
		{"glDeleteProgram", &gl.deleteProgram},
		{"glGetAttribLocation", &gl.getAttribLocation},
		{"glGetUniformLocation", &gl.getUniformLocation},
		{"glUniform4f", &gl.uniform4f},
		{"glGenBuffers", &gl.genBuffers},
		{"glDeleteBuffers", &gl.deleteBuffers},
		{"glBindBuffer", &gl.bindBuffer},
		{"glBufferData", &gl.bufferData},
		{"glVertexAttribPointer", &gl.vertexAttribPointer},
		{"glEnableVertexAttribArray", &gl.enableVertexAttribArray},
		{"glDrawArrays", &gl.drawArrays},
	}
}

func (gl *openGL) vertexArrays() []binding {
	return []binding{
		{"glGenVertexArrays", &gl.genVertexArrays},
		{"glDeleteVertexArrays", &gl.deleteVertexArrays},
		{"glBindVertexArray", &gl.bindVertexArray},
	}
}

// Load resolves every entry point through resolve, binds them and queries
// the driver strings. The GL context must be current on the calling thread.
//
// Load fails without binding anything if a required entry point is missing.
// Optional entry points are probed individually and reported through the
// returned table's capabilities.
func Load(resolve Resolver) (*Table, error) {
	gl := &openGL{}
	addrs, caps, err := probe(resolve, gl.required(), gl.vertexArrays())
	if err != nil {
		return nil, err
	}

	bind(gl.required(), addrs)
	if caps.Has(VertexArrayObjects) {
		bind(gl.vertexArrays(), addrs)
	}

	t := NewTable(gl, caps)
	t.info = QueryDriverInfo(gl)
	t.logDriverInfo()
	return t, nil
}

// probe resolves all names up front so a partially bound table never exists.
func probe(resolve Resolver, required, vertexArrays []binding) (map[string]uintptr, Capabilities, error) {
	addrs := make(map[string]uintptr, len(required)+len(vertexArrays))
	var missing []string
	for _, b := range required {
		addr := resolve(b.name)
		if addr == 0 {
			missing = append(missing, b.name)
			continue
		}
		addrs[b.name] = addr
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("gl: missing entry points: %s", strings.Join(missing, ", "))
	}

	var caps Capabilities
	vao := true
	for _, b := range vertexArrays {
		addr := resolve(b.name)
		if addr == 0 {
			vao = false
			continue
		}
		addrs[b.name] = addr
	}
	if vao {
		caps |= Capabilities(VertexArrayObjects)
	}
	return addrs, caps, nil
}

func bind(bindings []binding, addrs map[string]uintptr) {
	for _, b := range bindings {
		purego.RegisterFunc(b.dst, addrs[b.name])
	}
}

func (gl *openGL) ClearColor(r, g, b, a float32) {
	gl.clearColor(r, g, b, a)
}

func (gl *openGL) Clear(mask uint32) {
	gl.clear(mask)
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	gl.viewport(x, y, width, height)
}

func (gl *openGL) GetString(name uint32) string {
	return gostring(gl.getString(name))
}

func (gl *openGL) CreateShader(kind uint32) uint32 {
	return gl.createShader(kind)
}

func (gl *openGL) ShaderSource(shader uint32, source []byte) {
	if len(source) == 0 {
		return
	}
	length := int32(len(source))
	if i := bytes.IndexByte(source, 0); i >= 0 {
		length = int32(i)
	}
	srcPtr := &source[0]
	gl.shaderSource(shader, 1, &srcPtr, &length)
	runtime.KeepAlive(source)
}

func (gl *openGL) CompileShader(shader uint32) {
	gl.compileShader(shader)
}

func (gl *openGL) GetShaderiv(shader uint32, pname uint32, params *int32) {
	gl.getShaderiv(shader, pname, params)
}

func (gl *openGL) GetShaderInfoLog(shader uint32, buf []byte) int32 {
	if len(buf) == 0 {
		return 0
	}
	var length int32
	gl.getShaderInfoLog(shader, int32(len(buf)), &length, &buf[0])
	return length
}

func (gl *openGL) DeleteShader(shader uint32) {
	gl.deleteShader(shader)
}

func (gl *openGL) CreateProgram() uint32 {
	return gl.createProgram()
}

func (gl *openGL) AttachShader(program uint32, shader uint32) {
	gl.attachShader(program, shader)
}

func (gl *openGL) DetachShader(program uint32, shader uint32) {
	gl.detachShader(program, shader)
}

func (gl *openGL) LinkProgram(program uint32) {
	gl.linkProgram(program)
}

func (gl *openGL) GetProgramiv(program uint32, pname uint32, params *int32) {
	gl.getProgramiv(program, pname, params)
}

func (gl *openGL) GetProgramInfoLog(program uint32, buf []byte) int32 {
	if len(buf) == 0 {
		return 0
	}
	var length int32
	gl.getProgramInfoLog(program, int32(len(buf)), &length, &buf[0])
	return length
}

func (gl *openGL) UseProgram(program uint32) {
	gl.useProgram(program)
}

func (gl *openGL) DeleteProgram(program uint32) {
	gl.deleteProgram(program)
}

func (gl *openGL) GetAttribLocation(program uint32, name string) int32 {
	nameBytes := append([]byte(name), 0)
	return gl.getAttribLocation(program, &nameBytes[0])
}

func (gl *openGL) GetUniformLocation(program uint32, name string) int32 {
	nameBytes := append([]byte(name), 0)
	return gl.getUniformLocation(program, &nameBytes[0])
}

func (gl *openGL) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	gl.uniform4f(location, v0, v1, v2, v3)
}

func (gl *openGL) GenBuffers(n int32, buffers *uint32) {
	gl.genBuffers(n, buffers)
}

func (gl *openGL) DeleteBuffers(n int32, buffers *uint32) {
	gl.deleteBuffers(n, buffers)
}

func (gl *openGL) BindBuffer(target uint32, buffer uint32) {
	gl.bindBuffer(target, buffer)
}

func (gl *openGL) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.bufferData(target, size, data, usage)
}

func (gl *openGL) GenVertexArrays(n int32, arrays *uint32) {
	gl.genVertexArrays(n, arrays)
}

func (gl *openGL) DeleteVertexArrays(n int32, arrays *uint32) {
	gl.deleteVertexArrays(n, arrays)
}

func (gl *openGL) BindVertexArray(array uint32) {
	gl.bindVertexArray(array)
}

func (gl *openGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.vertexAttribPointer(index, size, xtype, normalized, stride, offset)
}

func (gl *openGL) EnableVertexAttribArray(index uint32) {
	gl.enableVertexAttribArray(index)
}

func (gl *openGL) DrawArrays(mode uint32, first int32, count int32) {
	gl.drawArrays(mode, first, count)
}
