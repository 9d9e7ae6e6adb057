package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/avoris/glcanvas/boids"
	"github.com/avoris/glcanvas/canvas"
	"github.com/avoris/glcanvas/encoder"
	"github.com/avoris/glcanvas/fractalclock"
	"github.com/avoris/glcanvas/glfwsurface"
	"github.com/avoris/glcanvas/options"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.CanvasOptions{
		Demo:       flag.String("demo", "boids", "Demo to run: boids or clock"),
		Width:      flag.Int("width", 1280, "Width of the canvas"),
		Height:     flag.Int("height", 720, "Height of the canvas"),
		Record:     flag.Bool("record", false, "Render into a video file instead of a window"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for recording"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Verbose:    flag.Bool("verbose", false, "Enable debug logging"),
	}
	flag.Parse()

	logger, err := newLogger(*opts.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	canvas.SetLogger(logger)

	if err := run(opts, logger); err != nil {
		logger.Fatal("canvas failed", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(opts *options.CanvasOptions, logger *zap.Logger) error {
	if err := glfwsurface.Init(); err != nil {
		return err
	}
	defer glfwsurface.Terminate()

	surface, err := glfwsurface.New(*opts.Width, *opts.Height, "glcanvas", !*opts.Record)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *opts.Demo {
	case "boids":
		return runDemo[boids.State, boids.Input](ctx, opts, logger, surface, boids.Renderer{}, boids.DefaultInput(), nil)
	case "clock":
		return runDemo[fractalclock.State, fractalclock.Input](ctx, opts, logger, surface, fractalclock.Renderer{}, fractalclock.DefaultInput(),
			func(c *canvas.Canvas[fractalclock.State, fractalclock.Input]) {
				surface.RegisterKeyCallback(glfw.KeyA, func() {
					input := c.Input()
					input.Animate = !input.Animate
					c.SetInput(input)
				})
			})
	default:
		return fmt.Errorf("unknown demo %q", *opts.Demo)
	}
}

func runDemo[S any, I comparable](
	ctx context.Context,
	opts *options.CanvasOptions,
	logger *zap.Logger,
	surface *glfwsurface.Surface,
	renderer canvas.Renderer[S, I],
	input I,
	configure func(*canvas.Canvas[S, I]),
) error {
	c := canvas.New(surface, renderer, input, canvas.Rendering)
	if configure != nil {
		configure(c)
	}

	surface.RegisterKeyCallback(glfw.KeySpace, func() {
		switch c.LoopState() {
		case canvas.Rendering:
			c.SetLoopState(canvas.Paused)
		case canvas.Paused:
			c.SetLoopState(canvas.Rendering)
		}
	})

	if *opts.Record {
		width, height := surface.Size()
		enc, err := encoder.New(width, height, *opts.FPS, *opts.OutputFile, *opts.FFMPEGPath)
		if err != nil {
			return err
		}
		frames := int(*opts.Duration * float64(*opts.FPS))
		stepMillis := 1000.0 / float64(*opts.FPS)
		logger.Info("recording",
			zap.String("output", *opts.OutputFile),
			zap.Int("frames", frames),
			zap.Int("fps", *opts.FPS))
		if err := c.RunFrames(ctx, frames, stepMillis, enc); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		logger.Info("wrote recording", zap.String("output", *opts.OutputFile))
		return nil
	}

	logger.Info("starting interactive render loop", zap.String("demo", *opts.Demo))
	return c.Run(ctx)
}
