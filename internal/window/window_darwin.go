//go:build darwin

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"

	"github.com/tinyrange/glharness/internal/gl"
)

type nsPoint struct {
	X, Y float64
}

type nsSize struct {
	W, H float64
}

type nsRect struct {
	Origin nsPoint
	Size   nsSize
}

const (
	nsApplicationActivationPolicyRegular = 0

	nsWindowStyleTitled      = 1 << 0
	nsWindowStyleClosable    = 1 << 1
	nsWindowStyleMiniaturize = 1 << 2
	nsWindowStyleResizable   = 1 << 3

	nsBackingStoreBuffered = 2

	nsEventMaskAny = ^uint(0)

	nsOpenGLPFAAccelerated       = 73
	nsOpenGLPFADoubleBuffer      = 5
	nsOpenGLPFAColorSize         = 8
	nsOpenGLPFADepthSize         = 12
	nsOpenGLPFAOpenGLProfile     = 99
	nsOpenGLProfileVersionLegacy = 0x1000

	nsOpenGLCPSwapInterval = 222
)

var (
	runtimeOnce sync.Once
	runtimeErr  error

	cfRunLoopRunInMode func(uintptr, float64, bool) int32
	cfDefaultMode      uintptr

	selAlloc                 objc.SEL
	selInit                  objc.SEL
	selRelease               objc.SEL
	selSharedApplication     objc.SEL
	selSetActivationPolicy   objc.SEL
	selFinishLaunching       objc.SEL
	selNextEventMatchingMask objc.SEL
	selSendEvent             objc.SEL
	selStringWithUTF8String  objc.SEL
	selInitWithContentRect   objc.SEL
	selSetTitle              objc.SEL
	selSetReleasedWhenClosed objc.SEL
	selCenter                objc.SEL
	selMakeKeyAndOrderFront  objc.SEL
	selIsVisible             objc.SEL
	selContentView           objc.SEL
	selBounds                objc.SEL
	selConvertRectToBacking  objc.SEL
	selInitWithAttributes    objc.SEL
	selInitWithFormat        objc.SEL
	selSetView               objc.SEL
	selMakeCurrentContext    objc.SEL
	selClearCurrentContext   objc.SEL
	selSetValuesForParameter objc.SEL
	selFlushBuffer           objc.SEL
)

type cocoaWindow struct {
	app     objc.ID
	pool    objc.ID
	window  objc.ID
	view    objc.ID
	ctx     objc.ID
	running bool
}

// New opens an NSWindow with a current legacy-profile NSOpenGLContext. The
// calling goroutine stays locked to its OS thread until Close.
func New(title string, width, height int) (Window, error) {
	runtime.LockOSThread()
	w, err := open(title, width, height)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return w, nil
}

func open(title string, width, height int) (*cocoaWindow, error) {
	if err := loadRuntime(); err != nil {
		return nil, err
	}

	w := &cocoaWindow{}
	w.app = objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
	if w.app == 0 {
		return nil, errors.New("NSApplication unavailable")
	}
	w.app.Send(selSetActivationPolicy, nsApplicationActivationPolicyRegular)
	w.app.Send(selFinishLaunching)
	w.pool = objc.ID(objc.GetClass("NSAutoreleasePool")).Send(selAlloc).Send(selInit)

	frame := nsRect{Size: nsSize{W: float64(width), H: float64(height)}}
	style := uint(nsWindowStyleTitled | nsWindowStyleClosable | nsWindowStyleMiniaturize | nsWindowStyleResizable)
	w.window = objc.ID(objc.GetClass("NSWindow")).Send(selAlloc).
		Send(selInitWithContentRect, frame, style, uint(nsBackingStoreBuffered), false)
	if w.window == 0 {
		w.destroy()
		return nil, errors.New("NSWindow initWithContentRect failed")
	}
	w.window.Send(selSetReleasedWhenClosed, false)
	w.window.Send(selSetTitle, nsString(title))
	w.window.Send(selCenter)
	w.window.Send(selMakeKeyAndOrderFront, objc.ID(0))

	w.view = w.window.Send(selContentView)
	if w.view == 0 {
		w.destroy()
		return nil, errors.New("NSWindow has no content view")
	}

	if err := w.makeContext(); err != nil {
		w.destroy()
		return nil, err
	}

	w.running = true
	return w, nil
}

func (w *cocoaWindow) makeContext() error {
	attrs := []uint32{
		nsOpenGLPFAAccelerated,
		nsOpenGLPFADoubleBuffer,
		nsOpenGLPFAColorSize, 24,
		nsOpenGLPFADepthSize, 24,
		nsOpenGLPFAOpenGLProfile, nsOpenGLProfileVersionLegacy,
		0,
	}
	pf := objc.ID(objc.GetClass("NSOpenGLPixelFormat")).Send(selAlloc).
		Send(selInitWithAttributes, unsafe.Pointer(&attrs[0]))
	if pf == 0 {
		return errors.New("NSOpenGLPixelFormat initWithAttributes failed")
	}
	defer pf.Send(selRelease)

	ctx := objc.ID(objc.GetClass("NSOpenGLContext")).Send(selAlloc).
		Send(selInitWithFormat, pf, objc.ID(0))
	if ctx == 0 {
		return errors.New("NSOpenGLContext initWithFormat failed")
	}
	ctx.Send(selSetView, w.view)
	ctx.Send(selMakeCurrentContext)

	swapInterval := int32(1)
	ctx.Send(selSetValuesForParameter, unsafe.Pointer(&swapInterval), nsOpenGLCPSwapInterval)

	w.ctx = ctx
	return nil
}

func (w *cocoaWindow) Resolver() (gl.Resolver, error) {
	if w.ctx == 0 {
		return nil, errors.New("window has no GL context")
	}
	resolve, err := gl.LibraryResolver()
	if err != nil {
		return nil, fmt.Errorf("load OpenGL.framework: %w", err)
	}
	return resolve, nil
}

func (w *cocoaWindow) destroy() {
	if w.ctx != 0 {
		objc.ID(objc.GetClass("NSOpenGLContext")).Send(selClearCurrentContext)
		w.ctx.Send(selRelease)
		w.ctx = 0
	}
	if w.window != 0 {
		w.window.Send(selRelease)
		w.window = 0
		w.view = 0
	}
	if w.pool != 0 {
		w.pool.Send(selRelease)
		w.pool = 0
	}
	w.running = false
}

func (w *cocoaWindow) Close() {
	if w.app == 0 {
		return
	}
	w.destroy()
	w.app = 0
	runtime.UnlockOSThread()
}

// Poll drains the run loop without blocking. Closing the window hides it,
// which ends the loop.
func (w *cocoaWindow) Poll() bool {
	if !w.running {
		return false
	}
	cfRunLoopRunInMode(cfDefaultMode, 0, true)
	for {
		ev := objc.Send[objc.ID](w.app, selNextEventMatchingMask, nsEventMaskAny, objc.ID(0), objc.ID(cfDefaultMode), true)
		if ev == 0 {
			break
		}
		w.app.Send(selSendEvent, ev)
	}
	if !objc.Send[bool](w.window, selIsVisible) {
		slog.Debug("window close requested")
		w.running = false
	}
	return w.running
}

func (w *cocoaWindow) Swap() {
	if w.ctx != 0 {
		w.ctx.Send(selFlushBuffer)
	}
}

// BackingSize is in pixels, so it includes the Retina scale.
func (w *cocoaWindow) BackingSize() (int, int) {
	if w.view == 0 {
		return 0, 0
	}
	bounds := objc.Send[nsRect](w.view, selBounds)
	backing := objc.Send[nsRect](w.view, selConvertRectToBacking, bounds)
	return int(backing.Size.W), int(backing.Size.H)
}

func loadRuntime() error {
	runtimeOnce.Do(func() {
		runtimeErr = loadFrameworks()
		if runtimeErr == nil {
			registerSelectors()
		}
	})
	return runtimeErr
}

func loadFrameworks() error {
	if _, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	if _, err := purego.Dlopen("/System/Library/Frameworks/AppKit.framework/AppKit", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	cf, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	purego.RegisterLibFunc(&cfRunLoopRunInMode, cf, "CFRunLoopRunInMode")

	// kCFRunLoopDefaultMode is a CFStringRef variable, not a function.
	ptr, err := purego.Dlsym(cf, "kCFRunLoopDefaultMode")
	if err != nil {
		return err
	}
	cfDefaultMode = *(*uintptr)(unsafe.Pointer(ptr))
	return nil
}

func registerSelectors() {
	selAlloc = objc.RegisterName("alloc")
	selInit = objc.RegisterName("init")
	selRelease = objc.RegisterName("release")
	selSharedApplication = objc.RegisterName("sharedApplication")
	selSetActivationPolicy = objc.RegisterName("setActivationPolicy:")
	selFinishLaunching = objc.RegisterName("finishLaunching")
	selNextEventMatchingMask = objc.RegisterName("nextEventMatchingMask:untilDate:inMode:dequeue:")
	selSendEvent = objc.RegisterName("sendEvent:")
	selStringWithUTF8String = objc.RegisterName("stringWithUTF8String:")
	selInitWithContentRect = objc.RegisterName("initWithContentRect:styleMask:backing:defer:")
	selSetTitle = objc.RegisterName("setTitle:")
	selSetReleasedWhenClosed = objc.RegisterName("setReleasedWhenClosed:")
	selCenter = objc.RegisterName("center")
	selMakeKeyAndOrderFront = objc.RegisterName("makeKeyAndOrderFront:")
	selIsVisible = objc.RegisterName("isVisible")
	selContentView = objc.RegisterName("contentView")
	selBounds = objc.RegisterName("bounds")
	selConvertRectToBacking = objc.RegisterName("convertRectToBacking:")
	selInitWithAttributes = objc.RegisterName("initWithAttributes:")
	selInitWithFormat = objc.RegisterName("initWithFormat:shareContext:")
	selSetView = objc.RegisterName("setView:")
	selMakeCurrentContext = objc.RegisterName("makeCurrentContext")
	selClearCurrentContext = objc.RegisterName("clearCurrentContext")
	selSetValuesForParameter = objc.RegisterName("setValues:forParameter:")
	selFlushBuffer = objc.RegisterName("flushBuffer")
}

func nsString(s string) objc.ID {
	return objc.ID(objc.GetClass("NSString")).Send(selStringWithUTF8String, s+"\x00")
}
