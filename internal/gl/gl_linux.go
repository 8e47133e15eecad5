//go:build linux

package gl

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	libGLOnce sync.Once
	libGL     uintptr
	libGLErr  error

	glxGetProcAddress func(*byte) uintptr
)

func openLibGL() (uintptr, error) {
	libGLOnce.Do(func() {
		libGL, libGLErr = purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if libGLErr != nil {
			return
		}
		if _, err := purego.Dlsym(libGL, "glXGetProcAddressARB"); err == nil {
			purego.RegisterLibFunc(&glxGetProcAddress, libGL, "glXGetProcAddressARB")
		}
	})
	return libGL, libGLErr
}

// LibraryResolver resolves entry points exported by libGL, falling back to
// glXGetProcAddressARB for extension entry points.
//
// glXGetProcAddressARB may return a non-nil stub for names the driver does
// not implement, so exported symbols are preferred.
func LibraryResolver() (Resolver, error) {
	handle, err := openLibGL()
	if err != nil {
		return nil, err
	}
	return func(name string) uintptr {
		if addr, err := purego.Dlsym(handle, name); err == nil {
			return addr
		}
		if glxGetProcAddress == nil {
			return 0
		}
		return glxGetProcAddress(cString(name))
	}, nil
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
