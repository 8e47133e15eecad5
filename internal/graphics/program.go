package graphics

import (
	glpkg "github.com/tinyrange/glharness/internal/gl"
)

// Program owns one linked program object.
type Program struct {
	table  *glpkg.Table
	handle uint32
}

// Link attaches shaders in order, links them and detaches them again. The
// shaders stay owned by the caller.
//
// On failure no program object is left behind on the GPU.
func Link(t *glpkg.Table, shaders ...*Shader) (*Program, error) {
	if len(shaders) == 0 {
		return nil, ErrNoShaders
	}
	for _, s := range shaders {
		if s == nil || s.handle == 0 {
			return nil, ErrShaderDeleted
		}
	}

	gl := t.GL()
	handle := gl.CreateProgram()
	if handle == 0 {
		return nil, &AllocationError{Object: "program"}
	}

	for _, s := range shaders {
		gl.AttachShader(handle, s.handle)
	}
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, glpkg.LinkStatus, &status)
	if status == 0 {
		log := infoLog(func(pname uint32, v *int32) { gl.GetProgramiv(handle, pname, v) },
			func(buf []byte) int32 { return gl.GetProgramInfoLog(handle, buf) })
		gl.DeleteProgram(handle)
		return nil, &LinkError{Log: log}
	}

	for _, s := range shaders {
		gl.DetachShader(handle, s.handle)
	}

	return &Program{table: t.Retain(), handle: handle}, nil
}

// Handle returns the GL name, or 0 once the program was deleted.
func (p *Program) Handle() uint32 {
	return p.handle
}

// Use makes p the active program for subsequent draw calls.
func (p *Program) Use() {
	if p.handle == 0 {
		panic("graphics: use of deleted program")
	}
	p.table.GL().UseProgram(p.handle)
}

// AttribLocation resolves an active vertex attribute by name.
func (p *Program) AttribLocation(name string) (uint32, error) {
	loc := p.table.GL().GetAttribLocation(p.handle, name)
	if loc < 0 {
		return 0, &UnresolvedBindingError{Kind: "attribute", Name: name}
	}
	return uint32(loc), nil
}

// UniformLocation resolves an active uniform by name.
func (p *Program) UniformLocation(name string) (int32, error) {
	loc := p.table.GL().GetUniformLocation(p.handle, name)
	if loc < 0 {
		return 0, &UnresolvedBindingError{Kind: "uniform", Name: name}
	}
	return loc, nil
}

// Delete releases the program object. Calling it again is a no-op.
func (p *Program) Delete() {
	if p.handle == 0 {
		return
	}
	p.table.GL().DeleteProgram(p.handle)
	p.handle = 0
	p.table.Release()
}
