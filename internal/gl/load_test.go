//go:build darwin || linux || windows

package gl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFor(names map[string]uintptr) Resolver {
	return func(name string) uintptr {
		return names[name]
	}
}

func allResolved(gl *openGL, extra ...binding) map[string]uintptr {
	names := make(map[string]uintptr)
	addr := uintptr(0x1000)
	for _, b := range append(gl.required(), extra...) {
		names[b.name] = addr
		addr += 0x10
	}
	return names
}

func TestProbeMissingRequired(t *testing.T) {
	gl := &openGL{}
	names := allResolved(gl)
	delete(names, "glCreateShader")
	delete(names, "glLinkProgram")

	_, _, err := probe(resolverFor(names), gl.required(), gl.vertexArrays())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glCreateShader")
	assert.Contains(t, err.Error(), "glLinkProgram")
}

func TestLoadFailsBeforeBinding(t *testing.T) {
	table, err := Load(func(string) uintptr { return 0 })
	assert.Error(t, err)
	assert.Nil(t, table)
}

func TestProbeVertexArrays(t *testing.T) {
	gl := &openGL{}

	addrs, caps, err := probe(resolverFor(allResolved(gl, gl.vertexArrays()...)), gl.required(), gl.vertexArrays())
	require.NoError(t, err)
	assert.True(t, caps.Has(VertexArrayObjects))
	assert.NotZero(t, addrs["glBindVertexArray"])

	partial := allResolved(gl, gl.vertexArrays()...)
	delete(partial, "glBindVertexArray")
	_, caps, err = probe(resolverFor(partial), gl.required(), gl.vertexArrays())
	require.NoError(t, err)
	assert.False(t, caps.Has(VertexArrayObjects))

	_, caps, err = probe(resolverFor(allResolved(gl)), gl.required(), gl.vertexArrays())
	require.NoError(t, err)
	assert.False(t, caps.Has(VertexArrayObjects))
}
