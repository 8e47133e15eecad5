// Package window opens a native window with a current OpenGL context.
package window

import (
	"errors"

	"github.com/tinyrange/glharness/internal/gl"
)

// ErrUnsupported is returned by New on platforms without a window backend.
var ErrUnsupported = errors.New("window: unsupported platform")

// Window is a native window whose GL context is current on the thread that
// created it. Every method must be called from that thread.
type Window interface {
	// Resolver returns the entry point resolver for the window's context.
	Resolver() (gl.Resolver, error)
	Close()
	Poll() bool
	Swap()
	BackingSize() (width, height int)
}
