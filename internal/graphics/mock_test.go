package graphics

import (
	"strings"
	"unsafe"

	glpkg "github.com/tinyrange/glharness/internal/gl"
)

type call struct {
	name string
	args []interface{}
}

// mockGL records every call and tracks the objects it hands out so tests can
// check that creates and deletes balance.
type mockGL struct {
	next uint32

	live    map[uint32]string
	created map[string]int
	deleted map[string]int

	compiled map[uint32]bool
	logs     map[uint32]string
	attached map[uint32][]uint32
	linked   map[uint32]bool

	calls []call

	// linkLog makes every link fail with this log when non-empty.
	linkLog string
	// infoLogLength overrides the reported INFO_LOG_LENGTH when non-nil.
	infoLogLength *int32
	// exhausted makes every Create/Gen call return 0.
	exhausted bool

	attribs  map[string]int32
	uniforms map[string]int32
}

func newMockGL() *mockGL {
	return &mockGL{
		next:     1,
		live:     make(map[uint32]string),
		created:  make(map[string]int),
		deleted:  make(map[string]int),
		compiled: make(map[uint32]bool),
		logs:     make(map[uint32]string),
		attached: make(map[uint32][]uint32),
		linked:   make(map[uint32]bool),
		attribs:  map[string]int32{"position": 0},
		uniforms: map[string]int32{"uColor": 3},
	}
}

func (m *mockGL) record(name string, args ...interface{}) {
	m.calls = append(m.calls, call{name: name, args: args})
}

func (m *mockGL) alloc(kind string) uint32 {
	if m.exhausted {
		return 0
	}
	h := m.next
	m.next++
	m.live[h] = kind
	m.created[kind]++
	return h
}

func (m *mockGL) free(kind string, h uint32) {
	if m.live[h] != kind {
		panic("mock: delete of unknown " + kind)
	}
	delete(m.live, h)
	m.deleted[kind]++
}

// leaked returns the number of live objects of kind.
func (m *mockGL) leaked(kind string) int {
	n := 0
	for _, k := range m.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (m *mockGL) count(name string) int {
	n := 0
	for _, c := range m.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (m *mockGL) reportedLength(log string) int32 {
	if m.infoLogLength != nil {
		return *m.infoLogLength
	}
	if log == "" {
		return 0
	}
	return int32(len(log) + 1)
}

func copyLog(log string, buf []byte) int32 {
	if len(buf) == 0 {
		return 0
	}
	n := copy(buf[:len(buf)-1], log)
	buf[n] = 0
	return int32(n)
}

func (m *mockGL) ClearColor(r, g, b, a float32) { m.record("ClearColor", r, g, b, a) }
func (m *mockGL) Clear(mask uint32) { m.record("Clear", mask) }

func (m *mockGL) Viewport(x, y, width, height int32) {
	m.record("Viewport", x, y, width, height)
}

func (m *mockGL) GetString(name uint32) string { return "" }

func (m *mockGL) CreateShader(kind uint32) uint32 {
	m.record("CreateShader", kind)
	return m.alloc("shader")
}

func (m *mockGL) ShaderSource(shader uint32, source []byte) {
	m.record("ShaderSource", shader)
	src := string(source)
	if i := strings.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	if strings.Count(src, "{") != strings.Count(src, "}") {
		m.logs[shader] = "0:1(1): error: syntax error, unexpected end of file"
	}
}

func (m *mockGL) CompileShader(shader uint32) {
	m.record("CompileShader", shader)
	m.compiled[shader] = m.logs[shader] == ""
}

func (m *mockGL) GetShaderiv(shader uint32, pname uint32, params *int32) {
	switch pname {
	case glpkg.CompileStatus:
		*params = 0
		if m.compiled[shader] {
			*params = 1
		}
	case glpkg.InfoLogLength:
		*params = m.reportedLength(m.logs[shader])
	}
}

func (m *mockGL) GetShaderInfoLog(shader uint32, buf []byte) int32 {
	return copyLog(m.logs[shader], buf)
}

func (m *mockGL) DeleteShader(shader uint32) {
	m.record("DeleteShader", shader)
	m.free("shader", shader)
}

func (m *mockGL) CreateProgram() uint32 {
	m.record("CreateProgram")
	return m.alloc("program")
}

func (m *mockGL) AttachShader(program, shader uint32) {
	m.record("AttachShader", program, shader)
	m.attached[program] = append(m.attached[program], shader)
}

func (m *mockGL) DetachShader(program, shader uint32) {
	m.record("DetachShader", program, shader)
	list := m.attached[program]
	for i, s := range list {
		if s == shader {
			m.attached[program] = append(list[:i], list[i+1:]...)
			return
		}
	}
	panic("mock: detach of unattached shader")
}

func (m *mockGL) LinkProgram(program uint32) {
	m.record("LinkProgram", program)
	m.linked[program] = m.linkLog == ""
	if m.linkLog != "" {
		m.logs[program] = m.linkLog
	}
}

func (m *mockGL) GetProgramiv(program uint32, pname uint32, params *int32) {
	switch pname {
	case glpkg.LinkStatus:
		*params = 0
		if m.linked[program] {
			*params = 1
		}
	case glpkg.InfoLogLength:
		*params = m.reportedLength(m.logs[program])
	case glpkg.AttachedShaders:
		*params = int32(len(m.attached[program]))
	}
}

func (m *mockGL) GetProgramInfoLog(program uint32, buf []byte) int32 {
	return copyLog(m.logs[program], buf)
}

func (m *mockGL) UseProgram(program uint32) { m.record("UseProgram", program) }

func (m *mockGL) DeleteProgram(program uint32) {
	m.record("DeleteProgram", program)
	m.free("program", program)
	delete(m.attached, program)
}

func (m *mockGL) GetAttribLocation(program uint32, name string) int32 {
	m.record("GetAttribLocation", program, name)
	if loc, ok := m.attribs[name]; ok {
		return loc
	}
	return -1
}

func (m *mockGL) GetUniformLocation(program uint32, name string) int32 {
	m.record("GetUniformLocation", program, name)
	if loc, ok := m.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (m *mockGL) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	m.record("Uniform4f", location, v0, v1, v2, v3)
}

func (m *mockGL) GenBuffers(n int32, buffers *uint32) {
	m.record("GenBuffers", n)
	*buffers = m.alloc("buffer")
}

func (m *mockGL) DeleteBuffers(n int32, buffers *uint32) {
	m.record("DeleteBuffers", n)
	m.free("buffer", *buffers)
}

func (m *mockGL) BindBuffer(target, buffer uint32) { m.record("BindBuffer", target, buffer) }

func (m *mockGL) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	m.record("BufferData", target, size, usage)
}

func (m *mockGL) GenVertexArrays(n int32, arrays *uint32) {
	m.record("GenVertexArrays", n)
	*arrays = m.alloc("vertex array")
}

func (m *mockGL) DeleteVertexArrays(n int32, arrays *uint32) {
	m.record("DeleteVertexArrays", n)
	m.free("vertex array", *arrays)
}

func (m *mockGL) BindVertexArray(array uint32) { m.record("BindVertexArray", array) }

func (m *mockGL) EnableVertexAttribArray(index uint32) {
	m.record("EnableVertexAttribArray", index)
}

func (m *mockGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	m.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
}

func (m *mockGL) DrawArrays(mode uint32, first, count int32) {
	m.record("DrawArrays", mode, first, count)
}

const (
	vertexSrc   = "attribute vec2 position;\nvoid main() { gl_Position = vec4(position, 0.0, 1.0); }\x00"
	fragmentSrc = "uniform vec4 uColor;\nvoid main() { gl_FragColor = uColor; }\x00"
	brokenSrc   = "void main() { gl_FragColor = vec4(1.0);\x00"
)

func newMockTable(caps glpkg.Capabilities) (*mockGL, *glpkg.Table) {
	m := newMockGL()
	return m, glpkg.NewTable(m, caps)
}
