//go:build darwin

package gl

import "github.com/ebitengine/purego"

const openGLFramework = "/System/Library/Frameworks/OpenGL.framework/OpenGL"

// LibraryResolver resolves entry points exported by OpenGL.framework. macOS
// exports every entry point of the supported profile directly, so there is no
// GetProcAddress fallback.
func LibraryResolver() (Resolver, error) {
	handle, err := purego.Dlopen(openGLFramework, purego.RTLD_GLOBAL|purego.RTLD_LAZY)
	if err != nil {
		return nil, err
	}
	return func(name string) uintptr {
		addr, err := purego.Dlsym(handle, name)
		if err != nil {
			return 0
		}
		return addr
	}, nil
}
