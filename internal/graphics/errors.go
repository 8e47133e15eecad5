package graphics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoShaders is returned by Link when called without shaders.
	ErrNoShaders = errors.New("graphics: link requires at least one shader")
	// ErrShaderDeleted is returned by Link when a shader was already deleted.
	ErrShaderDeleted = errors.New("graphics: shader already deleted")
	// ErrNoRenderable is returned by Draw before a renderable is activated.
	ErrNoRenderable = errors.New("graphics: no active renderable")
)

// CompileError carries the driver info log of a failed shader compile.
type CompileError struct {
	Stage ShaderKind
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the driver info log of a failed program link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "link program: " + e.Log
}

// AllocationError reports that the driver returned the zero name for a new
// object, usually because no context is current.
type AllocationError struct {
	Object string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate %s: driver returned no name", e.Object)
}

// UnresolvedBindingError reports an attribute or uniform that the linked
// program does not expose.
type UnresolvedBindingError struct {
	Kind string
	Name string
}

func (e *UnresolvedBindingError) Error() string {
	return fmt.Sprintf("%s %q not found in program", e.Kind, e.Name)
}

// SourceError reports that shader source could not be obtained.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("load shader source %s: %v", e.Name, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
