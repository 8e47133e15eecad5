package graphics

import (
	"fmt"

	glpkg "github.com/tinyrange/glharness/internal/gl"
)

// maxInfoLogLength bounds the info log size a sane driver can report.
const maxInfoLogLength = 1 << 20

// ShaderKind selects the pipeline stage of a shader.
type ShaderKind uint32

const (
	VertexShader   ShaderKind = glpkg.VertexShader
	FragmentShader ShaderKind = glpkg.FragmentShader
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderKind(%#x)", uint32(k))
	}
}

// Shader owns one compiled shader object. The zero value is not usable;
// shaders come from Compile and must be released with Delete.
type Shader struct {
	table  *glpkg.Table
	handle uint32
	kind   ShaderKind
}

// Compile creates and compiles a shader from NUL-terminated source.
//
// On failure no shader object is left behind on the GPU.
func Compile(t *glpkg.Table, source []byte, kind ShaderKind) (*Shader, error) {
	if kind != VertexShader && kind != FragmentShader {
		return nil, fmt.Errorf("graphics: unsupported shader kind %s", kind)
	}
	if len(source) == 0 || source[0] == 0 {
		return nil, &CompileError{Stage: kind, Log: "empty source"}
	}

	gl := t.GL()
	handle := gl.CreateShader(uint32(kind))
	if handle == 0 {
		return nil, &AllocationError{Object: kind.String() + " shader"}
	}

	gl.ShaderSource(handle, source)
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, glpkg.CompileStatus, &status)
	if status == 0 {
		log := infoLog(func(pname uint32, v *int32) { gl.GetShaderiv(handle, pname, v) },
			func(buf []byte) int32 { return gl.GetShaderInfoLog(handle, buf) })
		gl.DeleteShader(handle)
		return nil, &CompileError{Stage: kind, Log: log}
	}

	return &Shader{table: t.Retain(), handle: handle, kind: kind}, nil
}

// Handle returns the GL name, or 0 once the shader was deleted.
func (s *Shader) Handle() uint32 {
	return s.handle
}

func (s *Shader) Kind() ShaderKind {
	return s.kind
}

// Delete releases the shader object. Calling it again is a no-op.
func (s *Shader) Delete() {
	if s.handle == 0 {
		return
	}
	s.table.GL().DeleteShader(s.handle)
	s.handle = 0
	s.table.Release()
}

// infoLog reads a shader or program info log into a buffer of exactly the
// reported length plus the terminating NUL.
func infoLog(getiv func(pname uint32, v *int32), get func(buf []byte) int32) string {
	var length int32
	getiv(glpkg.InfoLogLength, &length)
	if length < 0 || length > maxInfoLogLength {
		panic(fmt.Sprintf("graphics: driver reported invalid info log length %d", length))
	}
	buf := make([]byte, length+1)
	n := get(buf)
	if n < 0 || int(n) > len(buf) {
		panic(fmt.Sprintf("graphics: driver wrote invalid info log length %d", n))
	}
	return string(buf[:n])
}
