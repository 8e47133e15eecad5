package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/tinyrange/glharness/internal/assets"
	"github.com/tinyrange/glharness/internal/gl"
	"github.com/tinyrange/glharness/internal/graphics"
	"github.com/tinyrange/glharness/internal/window"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	title := fs.String("title", "A fantastic window!", "window title")
	width := fs.Int("width", 800, "initial window width")
	height := fs.Int("height", 600, "initial window height")
	shaderDir := fs.String("shaders", "", "directory with triangle.vert and triangle.frag (default: embedded)")
	frames := fs.Int("frames", 0, "exit after this many frames (0 runs until the window closes)")
	verbose := fs.Bool("verbose", false, "enable debug logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	var sources assets.Provider = assets.Embedded()
	if *shaderDir != "" {
		sources = assets.Dir(*shaderDir)
	}

	win, err := window.New(*title, *width, *height)
	if err != nil {
		log.Fatalf("init window: %v", err)
	}
	defer win.Close()

	resolve, err := win.Resolver()
	if err != nil {
		log.Fatalf("resolver: %v", err)
	}
	table, err := gl.Load(resolve)
	if err != nil {
		log.Fatalf("load gl: %v", err)
	}

	reg := graphics.NewRegistry(graphics.NewContext(table, graphics.DefaultConfig()))

	err = graphics.Run(win, reg, graphics.RunOptions{
		Build: func(ctx *graphics.Context) (*graphics.Renderable, error) {
			return ctx.BuildRenderableFrom(sources, assets.TriangleVertex, assets.TriangleFragment)
		},
		MaxFrames:     *frames,
		FrameInterval: time.Second / 120,
	})

	reg.Take().Close()
	if closeErr := table.Close(); closeErr != nil {
		slog.Warn("close function table", "err", closeErr)
	}
	if err != nil {
		win.Close()
		log.Fatalf("run loop: %v", err)
	}
}
