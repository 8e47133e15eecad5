// Package assets provides shader sources by logical name.
package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotFound is wrapped by Source errors for names that do not exist.
var ErrNotFound = errors.New("assets: not found")

// Default shader names shipped with the binary.
const (
	TriangleVertex   = "triangle.vert"
	TriangleFragment = "triangle.frag"
)

//go:embed shaders
var embedded embed.FS

// Provider returns NUL-terminated shader source bytes for a logical name.
type Provider interface {
	Source(name string) ([]byte, error)
}

// FS serves sources from a file system.
type FS struct {
	fsys fs.FS
}

// NewFS returns a provider reading names relative to the root of fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Embedded returns the provider for the shaders compiled into the binary.
func Embedded() *FS {
	sub, err := fs.Sub(embedded, "shaders")
	if err != nil {
		panic(err)
	}
	return NewFS(sub)
}

// Dir returns a provider reading from a directory on disk.
func Dir(path string) *FS {
	return NewFS(os.DirFS(path))
}

func (p *FS) Source(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("assets: invalid name %q", name)
	}
	data, err := fs.ReadFile(p.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", name, err)
	}
	return nulTerminate(data), nil
}

func nulTerminate(data []byte) []byte {
	if bytes.IndexByte(data, 0) >= 0 {
		return data
	}
	out := make([]byte, len(data)+1)
	copy(out, data)
	return out
}
