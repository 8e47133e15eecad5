//go:build windows

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/tinyrange/glharness/internal/gl"
)

const (
	csOwnDC   = 0x0020
	csHRedraw = 0x0002
	csVRedraw = 0x0001

	wsOverlappedWindow = 0x00CF0000
	wsClipSiblings     = 0x04000000
	wsClipChildren     = 0x02000000
	swShow             = 5
	cwUseDefault       = 0x80000000

	wmDestroy = 0x0002
	wmSize    = 0x0005
	wmClose   = 0x0010
	wmQuit    = 0x0012
	pmRemove  = 0x0001

	pfdDrawToWindow  = 0x00000004
	pfdSupportOpenGL = 0x00000020
	pfdDoubleBuffer  = 0x00000001
	pfdTypeRGBA      = 0
	pfdMainPlane     = 0

	idcArrow = 32512
)

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   windows.Handle
	icon       windows.Handle
	cursor     windows.Handle
	background windows.Handle
	menuName   *uint16
	className  *uint16
	iconSm     windows.Handle
}

type winMsg struct {
	hwnd    windows.Handle
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	x, y    int32
	private uint32
}

type winRect struct {
	left, top, right, bottom int32
}

// pixelFormatDescriptor mirrors PIXELFORMATDESCRIPTOR (40 bytes).
type pixelFormatDescriptor struct {
	size          uint16
	version       uint16
	flags         uint32
	pixelType     byte
	colorBits     byte
	redBits       byte
	redShift      byte
	greenBits     byte
	greenShift    byte
	blueBits      byte
	blueShift     byte
	alphaBits     byte
	alphaShift    byte
	accumBits     byte
	accumRedBits  byte
	accumGrnBits  byte
	accumBlueBits byte
	accumAlpha    byte
	depthBits     byte
	stencilBits   byte
	auxBuffers    byte
	layerType     byte
	reserved      byte
	layerMask     uint32
	visibleMask   uint32
	damageMask    uint32
}

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procPeekMessage      = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procLoadCursor       = user32.NewProc("LoadCursorW")

	procChoosePixelFormat = gdi32.NewProc("ChoosePixelFormat")
	procSetPixelFormat    = gdi32.NewProc("SetPixelFormat")
	procSwapBuffers       = gdi32.NewProc("SwapBuffers")

	procWglCreateContext = opengl32.NewProc("wglCreateContext")
	procWglMakeCurrent   = opengl32.NewProc("wglMakeCurrent")
	procWglDeleteContext = opengl32.NewProc("wglDeleteContext")

	procGetModuleHandle = kernel32.NewProc("GetModuleHandleW")

	// The class name is unique per process so CS_OWNDC classes never collide.
	windowClassName = fmt.Sprintf("GLHarnessWindow_%d", os.Getpid())

	// current receives WM_CLOSE and WM_SIZE from wndProc.
	current *winWindow
)

type winWindow struct {
	hwnd windows.Handle
	hdc  windows.Handle
	ctx  windows.Handle

	width, height int
	running       bool
}

// call invokes p and turns a zero result into an error carrying GetLastError.
func call(p *windows.LazyProc, args ...uintptr) (uintptr, error) {
	r, _, err := p.Call(args...)
	if r == 0 {
		return 0, fmt.Errorf("%s failed: %w", p.Name, err)
	}
	return r, nil
}

// New opens a Win32 window with a current WGL context. The calling goroutine
// stays locked to its OS thread until Close.
func New(title string, width, height int) (Window, error) {
	runtime.LockOSThread()
	w, err := open(title, width, height)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return w, nil
}

func open(title string, width, height int) (*winWindow, error) {
	if size := unsafe.Sizeof(pixelFormatDescriptor{}); size != 40 {
		return nil, fmt.Errorf("PIXELFORMATDESCRIPTOR size mismatch: got %d, want 40", size)
	}
	if err := registerClass(); err != nil {
		return nil, err
	}

	w := &winWindow{width: width, height: height}
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return nil, err
	}
	className, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return nil, err
	}
	hwnd, err := call(procCreateWindowEx,
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(titlePtr)),
		wsOverlappedWindow|wsClipSiblings|wsClipChildren,
		cwUseDefault, cwUseDefault,
		uintptr(width), uintptr(height),
		0, 0,
		uintptr(moduleHandle()),
		0,
	)
	if err != nil {
		return nil, err
	}
	w.hwnd = windows.Handle(hwnd)

	hdc, err := call(procGetDC, uintptr(w.hwnd))
	if err != nil {
		w.destroy()
		return nil, err
	}
	w.hdc = windows.Handle(hdc)

	if err := setPixelFormat(w.hdc); err != nil {
		w.destroy()
		return nil, err
	}

	ctx, err := call(procWglCreateContext, uintptr(w.hdc))
	if err != nil {
		w.destroy()
		return nil, err
	}
	w.ctx = windows.Handle(ctx)
	if _, err := call(procWglMakeCurrent, uintptr(w.hdc), uintptr(w.ctx)); err != nil {
		w.destroy()
		return nil, err
	}

	procShowWindow.Call(uintptr(w.hwnd), swShow)
	procUpdateWindow.Call(uintptr(w.hwnd))

	w.running = true
	current = w
	return w, nil
}

func registerClass() error {
	className, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return err
	}
	cursor, _, _ := procLoadCursor.Call(0, idcArrow)
	wc := wndClassEx{
		size:      uint32(unsafe.Sizeof(wndClassEx{})),
		style:     csOwnDC | csHRedraw | csVRedraw,
		wndProc:   windows.NewCallback(wndProc),
		instance:  moduleHandle(),
		cursor:    windows.Handle(cursor),
		className: className,
	}
	_, err = call(procRegisterClassEx, uintptr(unsafe.Pointer(&wc)))
	if errors.Is(err, windows.ERROR_CLASS_ALREADY_EXISTS) {
		return nil
	}
	return err
}

func setPixelFormat(hdc windows.Handle) error {
	pfd := pixelFormatDescriptor{
		size:        uint16(unsafe.Sizeof(pixelFormatDescriptor{})),
		version:     1,
		flags:       pfdDrawToWindow | pfdSupportOpenGL | pfdDoubleBuffer,
		pixelType:   pfdTypeRGBA,
		colorBits:   24,
		depthBits:   24,
		stencilBits: 8,
		layerType:   pfdMainPlane,
	}
	format, err := call(procChoosePixelFormat, uintptr(hdc), uintptr(unsafe.Pointer(&pfd)))
	if err != nil {
		return err
	}
	if _, err := call(procSetPixelFormat, uintptr(hdc), format, uintptr(unsafe.Pointer(&pfd))); err != nil {
		return fmt.Errorf("pixel format %d: %w", format, err)
	}
	return nil
}

func moduleHandle() windows.Handle {
	h, _, _ := procGetModuleHandle.Call(0)
	return windows.Handle(h)
}

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	w := current
	if w != nil && w.hwnd != windows.Handle(hwnd) {
		w = nil
	}
	switch msg {
	case wmClose:
		if w != nil {
			slog.Debug("window close requested")
			w.running = false
		}
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	case wmSize:
		if w != nil {
			w.width = int(lParam & 0xFFFF)
			w.height = int((lParam >> 16) & 0xFFFF)
		}
	}
	ret, _, _ := procDefWindowProc.Call(hwnd, msg, wParam, lParam)
	return ret
}

func (w *winWindow) Resolver() (gl.Resolver, error) {
	if w.ctx == 0 {
		return nil, errors.New("window has no GL context")
	}
	resolve, err := gl.LibraryResolver()
	if err != nil {
		return nil, fmt.Errorf("load opengl32: %w", err)
	}
	return resolve, nil
}

func (w *winWindow) destroy() {
	if w.ctx != 0 {
		procWglMakeCurrent.Call(uintptr(w.hdc), 0)
		procWglDeleteContext.Call(uintptr(w.ctx))
		w.ctx = 0
	}
	if w.hdc != 0 {
		procReleaseDC.Call(uintptr(w.hwnd), uintptr(w.hdc))
		w.hdc = 0
	}
	if w.hwnd != 0 {
		procDestroyWindow.Call(uintptr(w.hwnd))
		w.hwnd = 0
	}
	if current == w {
		current = nil
	}
	w.running = false
}

func (w *winWindow) Close() {
	if w.hwnd == 0 {
		return
	}
	w.destroy()
	runtime.UnlockOSThread()
}

func (w *winWindow) Poll() bool {
	if !w.running {
		return false
	}
	var m winMsg
	for {
		ret, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if ret == 0 {
			break
		}
		if m.message == wmQuit {
			w.running = false
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
	return w.running
}

func (w *winWindow) Swap() {
	if w.hdc != 0 {
		procSwapBuffers.Call(uintptr(w.hdc))
	}
}

// BackingSize prefers the client rectangle and falls back to the last
// WM_SIZE.
func (w *winWindow) BackingSize() (int, int) {
	var r winRect
	if ret, _, _ := procGetClientRect.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&r))); ret == 0 {
		return w.width, w.height
	}
	return int(r.right - r.left), int(r.bottom - r.top)
}
