package gl

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrTableInUse is returned by Close while shaders, programs or contexts
	// still hold a reference to the table.
	ErrTableInUse = errors.New("gl: function table still in use")
	// ErrTableClosed is returned by Close on an already closed table.
	ErrTableClosed = errors.New("gl: function table closed")
)

// Resolver maps an entry point name (e.g. "glCreateShader") to its address
// in the current context, or 0 if the driver does not provide it.
type Resolver func(name string) uintptr

// Capability names an optional group of entry points.
type Capability uint32

const (
	// VertexArrayObjects means glGenVertexArrays, glBindVertexArray and
	// glDeleteVertexArrays are all available.
	VertexArrayObjects Capability = 1 << iota
)

func (c Capability) String() string {
	switch c {
	case VertexArrayObjects:
		return "vertex-array-objects"
	default:
		return fmt.Sprintf("Capability(%d)", uint32(c))
	}
}

// Capabilities is a set of Capability values.
type Capabilities uint32

func (c Capabilities) Has(cap Capability) bool {
	return uint32(c)&uint32(cap) != 0
}

func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for cap := Capability(1); cap != 0 && uint32(cap) <= uint32(c); cap <<= 1 {
		if c.Has(cap) {
			names = append(names, cap.String())
		}
	}
	return strings.Join(names, ",")
}

// DriverInfo holds the driver strings reported by the current context.
type DriverInfo struct {
	Vendor                 string
	Renderer               string
	Version                string
	ShadingLanguageVersion string
}

// QueryDriverInfo reads the driver strings. Missing strings are left empty.
func QueryDriverInfo(api OpenGL) DriverInfo {
	return DriverInfo{
		Vendor:                 api.GetString(Vendor),
		Renderer:               api.GetString(Renderer),
		Version:                api.GetString(Version),
		ShadingLanguageVersion: api.GetString(ShadingLanguageVersion),
	}
}

// Table is the loaded function table shared by every object that issues GL
// calls. It is immutable after construction. Dependents call Retain when they
// take ownership of a GL object and Release when that object is deleted, so
// the table cannot be closed (and reloaded) while any of them is alive.
//
// A Table must only be used from the thread that owns the GL context.
type Table struct {
	api    OpenGL
	caps   Capabilities
	info   DriverInfo
	refs   int
	closed bool
}

// NewTable wraps an already loaded OpenGL implementation.
func NewTable(api OpenGL, caps Capabilities) *Table {
	return &Table{api: api, caps: caps}
}

// GL returns the entry points.
func (t *Table) GL() OpenGL {
	return t.api
}

// Has reports whether the optional entry points for cap were resolved at
// load time.
func (t *Table) Has(cap Capability) bool {
	return t.caps.Has(cap)
}

// Capabilities returns every optional group resolved at load time.
func (t *Table) Capabilities() Capabilities {
	return t.caps
}

// Info returns the driver strings queried by Load.
func (t *Table) Info() DriverInfo {
	return t.info
}

// Retain records a new dependent and returns t.
func (t *Table) Retain() *Table {
	if t.closed {
		panic("gl: retain on closed function table")
	}
	t.refs++
	return t
}

// Release drops a reference taken with Retain.
func (t *Table) Release() {
	if t.refs == 0 {
		panic("gl: function table released more times than retained")
	}
	t.refs--
}

// Refs returns the number of live dependents.
func (t *Table) Refs() int {
	return t.refs
}

// Close marks the table unusable. It fails while dependents are alive.
func (t *Table) Close() error {
	if t.closed {
		return ErrTableClosed
	}
	if t.refs > 0 {
		return fmt.Errorf("%w: %d live references", ErrTableInUse, t.refs)
	}
	t.closed = true
	return nil
}

func (t *Table) logDriverInfo() {
	slog.Info("OpenGL driver",
		"vendor", t.info.Vendor,
		"renderer", t.info.Renderer,
		"version", t.info.Version,
		"glsl", t.info.ShadingLanguageVersion,
		"capabilities", t.caps.String(),
	)
}
