package graphics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	sizes  [][2]int
	frame  int
	swaps  int
	closed bool
}

func (s *fakeSurface) Poll() bool {
	return !s.closed && s.frame < len(s.sizes)
}

func (s *fakeSurface) Swap() {
	s.swaps++
	s.frame++
}

func (s *fakeSurface) BackingSize() (int, int) {
	size := s.sizes[s.frame]
	return size[0], size[1]
}

func buildDefault(ctx *Context) (*Renderable, error) {
	return ctx.BuildRenderable([]byte(vertexSrc), []byte(fragmentSrc))
}

func TestRunResizesAndDraws(t *testing.T) {
	assert := assert.New(t)
	m, table := newMockTable(0)
	reg := NewRegistry(NewContext(table, DefaultConfig()))

	win := &fakeSurface{sizes: [][2]int{{800, 600}, {800, 600}, {400, 300}, {400, 300}}}
	err := Run(win, reg, RunOptions{Build: buildDefault})
	require.NoError(t, err)

	assert.Equal(4, win.swaps)
	assert.Equal(2, m.count("Viewport"))
	assert.Equal(4, m.count("Clear"))
	assert.Equal(4, m.count("DrawArrays"))
	assert.Equal(1, m.created["program"], "renderable is built once")
	assert.False(reg.Taken(), "context is given back")

	reg.Take().Close()
	assert.Equal(0, table.Refs())
}

func TestRunMaxFrames(t *testing.T) {
	_, table := newMockTable(0)
	reg := NewRegistry(NewContext(table, DefaultConfig()))

	win := &fakeSurface{sizes: make([][2]int, 10)}
	require.NoError(t, Run(win, reg, RunOptions{Build: buildDefault, MaxFrames: 3}))
	assert.Equal(t, 3, win.swaps)
}

func TestRunDrawFailureKeepsRendering(t *testing.T) {
	m, table := newMockTable(0)
	delete(m.uniforms, "uColor")
	reg := NewRegistry(NewContext(table, DefaultConfig()))

	win := &fakeSurface{sizes: [][2]int{{100, 100}, {100, 100}}}
	require.NoError(t, Run(win, reg, RunOptions{Build: buildDefault}))
	assert.Equal(t, 2, win.swaps)
	assert.Equal(t, 0, m.count("DrawArrays"))
}

func TestRunBuildFailure(t *testing.T) {
	m, table := newMockTable(0)
	reg := NewRegistry(NewContext(table, DefaultConfig()))

	win := &fakeSurface{sizes: [][2]int{{100, 100}}}
	err := Run(win, reg, RunOptions{
		Build: func(ctx *Context) (*Renderable, error) {
			return ctx.BuildRenderable([]byte(vertexSrc), []byte(brokenSrc))
		},
	})

	var compileErr *CompileError
	assert.True(t, errors.As(err, &compileErr))
	assert.Equal(t, 0, win.swaps)
	assert.Equal(t, 0, m.leaked("shader"))
	assert.False(t, reg.Taken())
}
