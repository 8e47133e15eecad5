// Package graphics wraps GL shader and program objects with explicit
// ownership and drives the per-frame draw of a Context.
package graphics

import (
	"log/slog"
	"time"
)

// Surface is the part of a window the frame loop needs.
type Surface interface {
	// Poll processes pending events and reports whether the loop should
	// continue.
	Poll() bool
	// Swap presents the back buffer.
	Swap()
	BackingSize() (width, height int)
}

// RunOptions controls Run.
type RunOptions struct {
	// Build creates the renderable on the first frame.
	Build func(*Context) (*Renderable, error)

	// MaxFrames stops the loop after that many frames when positive.
	MaxFrames int

	// FrameInterval is slept after every swap.
	FrameInterval time.Duration
}

// Run takes the context out of reg and drives frames until the surface
// closes, MaxFrames is reached or the renderable cannot be built. The
// context is given back before Run returns.
//
// Draw failures are logged and the frame is presented anyway, so the
// previous contents stay visible.
func Run(win Surface, reg *Registry, opts RunOptions) error {
	ctx := reg.Take()
	defer reg.GiveBack(ctx)

	width, height := -1, -1
	for frame := 0; opts.MaxFrames <= 0 || frame < opts.MaxFrames; frame++ {
		if !win.Poll() {
			return nil
		}

		if bw, bh := win.BackingSize(); bw != width || bh != height {
			width, height = bw, bh
			ctx.Viewport(width, height)
		} else {
			ctx.Clear()
		}

		if ctx.Active() == nil && opts.Build != nil {
			r, err := opts.Build(ctx)
			if err != nil {
				return err
			}
			ctx.Activate(r)
		}

		if err := ctx.Draw(); err != nil {
			slog.Error("draw frame", "frame", frame, "err", err)
		}

		win.Swap()
		if opts.FrameInterval > 0 {
			time.Sleep(opts.FrameInterval)
		}
	}
	return nil
}
