package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkProgram(t *testing.T) {
	assert := assert.New(t)
	m, table := newMockTable(0)

	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)
	defer vs.Delete()
	fs, err := Compile(table, []byte(fragmentSrc), FragmentShader)
	require.NoError(t, err)
	defer fs.Delete()

	p, err := Link(table, vs, fs)
	require.NoError(t, err)
	assert.NotZero(p.Handle())

	assert.Equal(2, m.count("AttachShader"))
	assert.Equal(2, m.count("DetachShader"))
	assert.Empty(m.attached[p.Handle()], "shaders must be detached after a successful link")
	assert.NotZero(vs.Handle(), "detaching must not delete the shader")
	assert.Equal(2, m.leaked("shader"))

	p.Use()
	assert.Equal("UseProgram", m.calls[len(m.calls)-1].name)
	assert.Equal(p.Handle(), m.calls[len(m.calls)-1].args[0])

	p.Delete()
	p.Delete()
	assert.Equal(1, m.count("DeleteProgram"))
	assert.Equal(0, m.leaked("program"))
	assert.Panics(func() { p.Use() })
}

func TestLinkAttachOrder(t *testing.T) {
	m, table := newMockTable(0)

	fs, err := Compile(table, []byte(fragmentSrc), FragmentShader)
	require.NoError(t, err)
	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)

	p, err := Link(table, fs, vs)
	require.NoError(t, err)

	var order []uint32
	for _, c := range m.calls {
		if c.name == "AttachShader" {
			order = append(order, c.args[1].(uint32))
		}
	}
	assert.Equal(t, []uint32{fs.Handle(), vs.Handle()}, order)

	p.Delete()
	fs.Delete()
	vs.Delete()
	assert.Equal(t, 0, table.Refs())
}

func TestLinkWithoutShaders(t *testing.T) {
	m, table := newMockTable(0)

	p, err := Link(table)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNoShaders)
	assert.Empty(t, m.calls, "no driver call before the precondition check")
}

func TestLinkDeletedShader(t *testing.T) {
	m, table := newMockTable(0)

	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)
	vs.Delete()
	before := len(m.calls)

	_, err = Link(table, vs)
	assert.ErrorIs(t, err, ErrShaderDeleted)
	assert.Len(t, m.calls, before)
}

func TestLinkErrorCarriesLog(t *testing.T) {
	assert := assert.New(t)
	m, table := newMockTable(0)
	m.linkLog = "error: vertex shader lacks `main'"

	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)
	defer vs.Delete()

	p, err := Link(table, vs)
	assert.Nil(p)

	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(m.linkLog, linkErr.Log)
	assert.Equal(0, m.leaked("program"))
	assert.Equal(1, table.Refs(), "only the shader holds a reference")
}

func TestLinkAllocationFailure(t *testing.T) {
	m, table := newMockTable(0)

	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)
	defer vs.Delete()
	m.exhausted = true

	_, err = Link(table, vs)
	var allocErr *AllocationError
	assert.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 0, m.count("AttachShader"))
}

func TestProgramLocations(t *testing.T) {
	m, table := newMockTable(0)

	vs, err := Compile(table, []byte(vertexSrc), VertexShader)
	require.NoError(t, err)
	defer vs.Delete()
	p, err := Link(table, vs)
	require.NoError(t, err)
	defer p.Delete()

	loc, err := p.UniformLocation("uColor")
	require.NoError(t, err)
	assert.Equal(t, m.uniforms["uColor"], loc)

	_, err = p.AttribLocation("normal")
	var bindErr *UnresolvedBindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "attribute", bindErr.Kind)
	assert.Equal(t, "normal", bindErr.Name)

	_, err = p.UniformLocation("uTime")
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "uniform", bindErr.Kind)
}
