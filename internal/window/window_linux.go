//go:build linux

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/tinyrange/glharness/internal/gl"
)

const (
	glxRGBA         = 4
	glxDoubleBuffer = 5
	glxDepthSize    = 12
	glxNone         = 0

	inputOutput = 1

	exposureMask        = 1 << 15
	structureNotifyMask = 1 << 17

	configureNotify = 22
	clientMessage   = 33
	destroyNotify   = 17

	cwColormap    = 1 << 13
	cwEventMask   = 1 << 11
	cwBorderPixel = 1 << 3
)

type xVisualInfo struct {
	Visual       uintptr
	VisualID     uint
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uint64
	GreenMask    uint64
	BlueMask     uint64
	ColormapSize int32
	BitsPerRGB   int32
	MapEntries   int32
	pad          int32
}

type xClientMessage struct {
	Type        int32
	Serial      uint64
	SendEvent   int32
	Display     uintptr
	Window      uintptr
	MessageType uintptr
	Format      int32
	Data        [5]uint64
}

type xConfigureEvent struct {
	Type      int32
	Serial    uint64
	SendEvent int32
	Display   uintptr
	Event     uintptr
	Window    uintptr
	X, Y      int32
	Width     int32
	Height    int32
}

type xSetWindowAttributes struct {
	BackgroundPixmap uintptr
	BackgroundPixel  uint64
	BorderPixmap     uint64
	BorderPixel      uint64
	BitGravity       int32
	WinGravity       int32
	BackingStore     int32
	BackingPlanes    uint64
	BackingPixel     uint64
	SaveUnder        int32
	EventMask        int64
	DoNotPropagate   int64
	OverrideRedirect int32
	Colormap         uintptr
	Cursor           uintptr
}

var (
	x11lib uintptr
	gllib  uintptr

	xOpenDisplay    func(*byte) uintptr
	xDefaultScreen  func(uintptr) int32
	xRootWindow     func(uintptr, int32) uintptr
	xCreateColormap func(uintptr, uintptr, uintptr, int32) uintptr
	xCreateWindow   func(uintptr, uintptr, int32, int32, uint32, uint32, uint32, int32, uint32, uintptr, uint64, unsafe.Pointer) uintptr
	xMapWindow      func(uintptr, uintptr) int32
	xStoreName      func(uintptr, uintptr, *byte) int32
	xInternAtom     func(uintptr, *byte, int32) uintptr
	xSetWMProtocols func(uintptr, uintptr, *uintptr, int32) int32
	xSelectInput    func(uintptr, uintptr, int64)
	xPending        func(uintptr) int32
	xNextEvent      func(uintptr, unsafe.Pointer)
	xGetGeometry    func(uintptr, uintptr, *uintptr, *int32, *int32, *uint32, *uint32, *uint32, *uint32) int32
	xDestroyWindow  func(uintptr, uintptr) int32
	xCloseDisplay   func(uintptr) int32

	glxChooseVisual   func(uintptr, int32, *int32) *xVisualInfo
	glxCreateContext  func(uintptr, *xVisualInfo, uintptr, int32) uintptr
	glxMakeCurrent    func(uintptr, uintptr, uintptr) int32
	glxSwapBuffers    func(uintptr, uintptr)
	glxDestroyContext func(uintptr, uintptr)
)

type x11Window struct {
	display  uintptr
	window   uintptr
	ctx      uintptr
	wmDelete uintptr
	running  bool

	// last size reported by ConfigureNotify
	width, height int
}

// New opens an X11 window with a current GLX context. The calling goroutine
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

func open(title string, width, height int) (*x11Window, error) {
	if err := ensureLibs(); err != nil {
		return nil, err
	}

	w := &x11Window{}
	w.display = xOpenDisplay(nil)
	if w.display == 0 {
		return nil, errors.New("XOpenDisplay failed")
	}

	screen := xDefaultScreen(w.display)
	root := xRootWindow(w.display, screen)

	attrs := []int32{glxRGBA, glxDoubleBuffer, glxDepthSize, 24, glxNone}
	visual := glxChooseVisual(w.display, screen, &attrs[0])
	if visual == nil {
		w.destroy()
		return nil, errors.New("glXChooseVisual failed")
	}

	var swa xSetWindowAttributes
	swa.Colormap = xCreateColormap(w.display, root, visual.Visual, 0)
	swa.EventMask = exposureMask | structureNotifyMask

	w.window = xCreateWindow(
		w.display, root,
		0, 0,
		uint32(width), uint32(height),
		0,
		visual.Depth,
		inputOutput,
		visual.Visual,
		cwBorderPixel|cwColormap|cwEventMask,
		unsafe.Pointer(&swa),
	)
	if w.window == 0 {
		w.destroy()
		return nil, errors.New("XCreateWindow failed")
	}
	xSelectInput(w.display, w.window, swa.EventMask)
	xStoreName(w.display, w.window, cString(title))
	xMapWindow(w.display, w.window)

	w.wmDelete = xInternAtom(w.display, cString("WM_DELETE_WINDOW"), 0)
	xSetWMProtocols(w.display, w.window, &w.wmDelete, 1)

	w.ctx = glxCreateContext(w.display, visual, 0, 1)
	if w.ctx == 0 {
		w.destroy()
		return nil, errors.New("glXCreateContext failed")
	}
	if glxMakeCurrent(w.display, w.window, w.ctx) == 0 {
		w.destroy()
		return nil, errors.New("glXMakeCurrent failed")
	}

	w.running = true
	return w, nil
}

func (w *x11Window) Resolver() (gl.Resolver, error) {
	if w.ctx == 0 {
		return nil, errors.New("window has no GL context")
	}
	resolve, err := gl.LibraryResolver()
	if err != nil {
		return nil, fmt.Errorf("load libGL: %w", err)
	}
	return resolve, nil
}

func (w *x11Window) destroy() {
	if w.ctx != 0 {
		glxMakeCurrent(w.display, 0, 0)
		glxDestroyContext(w.display, w.ctx)
		w.ctx = 0
	}
	if w.window != 0 {
		xDestroyWindow(w.display, w.window)
		w.window = 0
	}
	if w.display != 0 {
		xCloseDisplay(w.display)
		w.display = 0
	}
	w.running = false
}

func (w *x11Window) Close() {
	if w.display == 0 {
		return
	}
	w.destroy()
	runtime.UnlockOSThread()
}

func (w *x11Window) Poll() bool {
	if !w.running {
		return false
	}

	for xPending(w.display) > 0 {
		var ev [192]byte
		xNextEvent(w.display, unsafe.Pointer(&ev[0]))
		w.handleEvent(&ev)
	}
	return w.running
}

// handleEvent applies one XEvent, in its raw union layout, to the window state.
func (w *x11Window) handleEvent(ev *[192]byte) {
	switch *(*int32)(unsafe.Pointer(&ev[0])) {
	case clientMessage:
		cm := (*xClientMessage)(unsafe.Pointer(&ev[0]))
		if cm.Format == 32 && cm.Data[0] == uint64(w.wmDelete) {
			slog.Debug("window close requested")
			w.running = false
		}
	case configureNotify:
		ce := (*xConfigureEvent)(unsafe.Pointer(&ev[0]))
		if int(ce.Width) != w.width || int(ce.Height) != w.height {
			slog.Debug("window resized", "width", ce.Width, "height", ce.Height)
			w.width, w.height = int(ce.Width), int(ce.Height)
		}
	case destroyNotify:
		w.running = false
	}
}

func (w *x11Window) Swap() {
	if w.display != 0 && w.window != 0 {
		glxSwapBuffers(w.display, w.window)
	}
}

// BackingSize returns the size from the last ConfigureNotify, asking the
// server only before the first one arrives.
func (w *x11Window) BackingSize() (int, int) {
	if w.width > 0 && w.height > 0 {
		return w.width, w.height
	}
	var root uintptr
	var x, y int32
	var width, height uint32
	var border, depth uint32
	if xGetGeometry(w.display, w.window, &root, &x, &y, &width, &height, &border, &depth) == 0 {
		return 0, 0
	}
	w.width, w.height = int(width), int(height)
	return w.width, w.height
}

func ensureLibs() error {
	var err error
	if x11lib == 0 {
		x11lib, err = purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			return err
		}
		registerX11()
	}
	if gllib == 0 {
		gllib, err = purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			return err
		}
		registerGLX()
	}
	return nil
}

func registerX11() {
	purego.RegisterLibFunc(&xOpenDisplay, x11lib, "XOpenDisplay")
	purego.RegisterLibFunc(&xDefaultScreen, x11lib, "XDefaultScreen")
	purego.RegisterLibFunc(&xRootWindow, x11lib, "XRootWindow")
	purego.RegisterLibFunc(&xCreateColormap, x11lib, "XCreateColormap")
	purego.RegisterLibFunc(&xCreateWindow, x11lib, "XCreateWindow")
	purego.RegisterLibFunc(&xMapWindow, x11lib, "XMapWindow")
	purego.RegisterLibFunc(&xStoreName, x11lib, "XStoreName")
	purego.RegisterLibFunc(&xInternAtom, x11lib, "XInternAtom")
	purego.RegisterLibFunc(&xSetWMProtocols, x11lib, "XSetWMProtocols")
	purego.RegisterLibFunc(&xSelectInput, x11lib, "XSelectInput")
	purego.RegisterLibFunc(&xPending, x11lib, "XPending")
	purego.RegisterLibFunc(&xNextEvent, x11lib, "XNextEvent")
	purego.RegisterLibFunc(&xGetGeometry, x11lib, "XGetGeometry")
	purego.RegisterLibFunc(&xDestroyWindow, x11lib, "XDestroyWindow")
	purego.RegisterLibFunc(&xCloseDisplay, x11lib, "XCloseDisplay")
}

func registerGLX() {
	purego.RegisterLibFunc(&glxChooseVisual, gllib, "glXChooseVisual")
	purego.RegisterLibFunc(&glxCreateContext, gllib, "glXCreateContext")
	purego.RegisterLibFunc(&glxMakeCurrent, gllib, "glXMakeCurrent")
	purego.RegisterLibFunc(&glxSwapBuffers, gllib, "glXSwapBuffers")
	purego.RegisterLibFunc(&glxDestroyContext, gllib, "glXDestroyContext")
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
