//go:build windows

package gl

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// LibraryResolver resolves OpenGL 1.1 entry points from opengl32.dll and
// everything newer through wglGetProcAddress. A wgl context must be current
// when the resolver is called.
func LibraryResolver() (Resolver, error) {
	opengl32 := windows.NewLazySystemDLL("opengl32.dll")
	if err := opengl32.Load(); err != nil {
		return nil, err
	}
	wglGetProcAddress := opengl32.NewProc("wglGetProcAddress")
	if err := wglGetProcAddress.Find(); err != nil {
		return nil, err
	}
	return func(name string) uintptr {
		if proc := opengl32.NewProc(name); proc.Find() == nil {
			return proc.Addr()
		}
		cname, err := windows.BytePtrFromString(name)
		if err != nil {
			return 0
		}
		addr, _, _ := wglGetProcAddress.Call(uintptr(unsafe.Pointer(cname)))
		// wglGetProcAddress signals failure with 0, 1, 2, 3 or -1.
		switch addr {
		case 0, 1, 2, 3, ^uintptr(0):
			return 0
		}
		return addr
	}, nil
}
