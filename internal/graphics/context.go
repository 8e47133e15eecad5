package graphics

import (
	"errors"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tinyrange/glharness/internal/assets"
	glpkg "github.com/tinyrange/glharness/internal/gl"
)

// Config describes what a Context draws.
type Config struct {
	ClearColor mgl32.Vec4
	FillColor  mgl32.Vec4

	// Vertices is drawn as a triangle list.
	Vertices []mgl32.Vec2

	// PositionAttrib and ColorUniform name the inputs the shaders must expose.
	PositionAttrib string
	ColorUniform   string
}

// DefaultConfig draws a centred quad as two triangles.
func DefaultConfig() Config {
	const half = 0.5
	return Config{
		ClearColor: mgl32.Vec4{0, 0.5, 0, 1},
		FillColor:  mgl32.Vec4{0, 0.3, 0.5, 1},
		Vertices: []mgl32.Vec2{
			{-half, half}, {half, half}, {half, -half},
			{-half, half}, {half, -half}, {-half, -half},
		},
		PositionAttrib: "position",
		ColorUniform:   "uColor",
	}
}

// Renderable is a linked program together with the shaders it was built from.
type Renderable struct {
	Program *Program
	shaders []*Shader
}

// Delete releases the program and its shaders.
func (r *Renderable) Delete() {
	r.Program.Delete()
	for _, s := range r.shaders {
		s.Delete()
	}
}

// vertexBinder makes the vertex buffer the source of the position attribute.
// Which implementation a Context uses is decided once from the table
// capabilities.
type vertexBinder interface {
	// bind prepares vertex state and reports whether the attribute pointer
	// still has to be specified.
	bind(gl glpkg.OpenGL, vbo uint32) (needsPointer bool, err error)
	release(gl glpkg.OpenGL)
}

// vaoBinder records the attribute setup in a vertex array object on the
// first draw and only rebinds it afterwards.
type vaoBinder struct {
	vao uint32
}

func (b *vaoBinder) bind(gl glpkg.OpenGL, vbo uint32) (bool, error) {
	if b.vao != 0 {
		gl.BindVertexArray(b.vao)
		return false, nil
	}
	gl.GenVertexArrays(1, &b.vao)
	if b.vao == 0 {
		return false, &AllocationError{Object: "vertex array"}
	}
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(glpkg.ArrayBuffer, vbo)
	return true, nil
}

func (b *vaoBinder) release(gl glpkg.OpenGL) {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}

// attribBinder respecifies the attribute pointer on every draw.
type attribBinder struct{}

func (attribBinder) bind(gl glpkg.OpenGL, vbo uint32) (bool, error) {
	gl.BindBuffer(glpkg.ArrayBuffer, vbo)
	return true, nil
}

func (attribBinder) release(glpkg.OpenGL) {}

// Context holds the function table and the per-session GPU state: the active
// renderable and the vertex buffer it draws from.
//
// A Context must only be used from the thread that owns the GL context.
type Context struct {
	table  *glpkg.Table
	cfg    Config
	binder vertexBinder

	width, height int

	active *Renderable
	vbo    uint32

	// attribute location the vertex array object was recorded with
	vaoAttrib uint32
}

// NewContext returns a context that shares t.
func NewContext(t *glpkg.Table, cfg Config) *Context {
	var binder vertexBinder = attribBinder{}
	if t.Has(glpkg.VertexArrayObjects) {
		binder = &vaoBinder{}
	}
	return &Context{
		table:  t.Retain(),
		cfg:    cfg,
		binder: binder,
	}
}

// gl returns the entry points of an open context.
func (c *Context) gl() glpkg.OpenGL {
	if c.table == nil {
		panic("graphics: use of closed context")
	}
	return c.table.GL()
}

// BuildRenderable compiles both stages and links them. The first error is
// returned and every object created so far is deleted.
func (c *Context) BuildRenderable(vertexSource, fragmentSource []byte) (*Renderable, error) {
	if c.table == nil {
		panic("graphics: use of closed context")
	}
	vs, err := Compile(c.table, vertexSource, VertexShader)
	if err != nil {
		return nil, err
	}
	fs, err := Compile(c.table, fragmentSource, FragmentShader)
	if err != nil {
		vs.Delete()
		return nil, err
	}
	prog, err := Link(c.table, vs, fs)
	if err != nil {
		vs.Delete()
		fs.Delete()
		return nil, err
	}
	return &Renderable{Program: prog, shaders: []*Shader{vs, fs}}, nil
}

// BuildRenderableFrom loads both sources from p before compiling anything.
func (c *Context) BuildRenderableFrom(p assets.Provider, vertexName, fragmentName string) (*Renderable, error) {
	vertexSource, err := p.Source(vertexName)
	if err != nil {
		return nil, &SourceError{Name: vertexName, Err: err}
	}
	fragmentSource, err := p.Source(fragmentName)
	if err != nil {
		return nil, &SourceError{Name: fragmentName, Err: err}
	}
	return c.BuildRenderable(vertexSource, fragmentSource)
}

// Activate hands r to the context. The previously active renderable is
// deleted.
func (c *Context) Activate(r *Renderable) {
	if c.active == r {
		return
	}
	if c.active != nil {
		c.active.Delete()
	}
	c.active = r
}

// Active returns the renderable Draw uses, or nil.
func (c *Context) Active() *Renderable {
	return c.active
}

// Viewport sets the drawing rectangle and clears the color buffer.
func (c *Context) Viewport(width, height int) {
	c.width, c.height = width, height
	c.gl().Viewport(0, 0, int32(width), int32(height))
	c.Clear()
}

// Clear clears the color buffer with the configured clear color.
func (c *Context) Clear() {
	gl := c.gl()
	cc := c.cfg.ClearColor
	gl.ClearColor(cc.X(), cc.Y(), cc.Z(), cc.W())
	gl.Clear(glpkg.ColorBufferBit)
}

// Size returns the dimensions of the last Viewport call.
func (c *Context) Size() (width, height int) {
	return c.width, c.height
}

// Draw draws the configured vertices with the active renderable. Every name
// lookup happens before the draw call, so a failing Draw issues no draw.
func (c *Context) Draw() error {
	gl := c.gl()
	if c.active == nil {
		return ErrNoRenderable
	}
	if len(c.cfg.Vertices) == 0 {
		return errors.New("graphics: no vertices configured")
	}
	prog := c.active.Program

	prog.Use()
	color, err := prog.UniformLocation(c.cfg.ColorUniform)
	if err != nil {
		return err
	}
	position, err := prog.AttribLocation(c.cfg.PositionAttrib)
	if err != nil {
		return err
	}

	if err := c.uploadVertices(); err != nil {
		return err
	}
	needsPointer, err := c.binder.bind(gl, c.vbo)
	if err != nil {
		return err
	}
	if !needsPointer && position != c.vaoAttrib {
		// A relinked program may place the attribute elsewhere.
		gl.BindBuffer(glpkg.ArrayBuffer, c.vbo)
		needsPointer = true
	}
	if needsPointer {
		gl.EnableVertexAttribArray(position)
		gl.VertexAttribPointer(position, 2, glpkg.Float, false, 0, 0)
		c.vaoAttrib = position
	}

	fc := c.cfg.FillColor
	gl.Uniform4f(color, fc.X(), fc.Y(), fc.Z(), fc.W())
	gl.DrawArrays(glpkg.Triangles, 0, int32(len(c.cfg.Vertices)))
	return nil
}

func (c *Context) uploadVertices() error {
	if c.vbo != 0 {
		return nil
	}
	gl := c.table.GL()
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return &AllocationError{Object: "vertex buffer"}
	}
	gl.BindBuffer(glpkg.ArrayBuffer, vbo)
	size := len(c.cfg.Vertices) * int(unsafe.Sizeof(mgl32.Vec2{}))
	gl.BufferData(glpkg.ArrayBuffer, size, unsafe.Pointer(&c.cfg.Vertices[0]), glpkg.StaticDraw)
	c.vbo = vbo
	return nil
}

// Close deletes everything the context owns and releases the table.
func (c *Context) Close() {
	if c.table == nil {
		return
	}
	gl := c.table.GL()
	if c.active != nil {
		c.active.Delete()
		c.active = nil
	}
	c.binder.release(gl)
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
		c.vbo = 0
	}
	c.table.Release()
	c.table = nil
}
