package canvas

import (
	"context"
	"fmt"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/avoris/glcanvas/graphics"
)

// RenderLoopState is the state of one render loop instance.
type RenderLoopState int

const (
	// Rendering draws one frame per display refresh.
	Rendering RenderLoopState = iota
	// Paused keeps the loop scheduled but draws nothing.
	Paused
	// Finished terminates the loop instance. Reaching it tears down the
	// render state; leaving it requires re-initiating the loop.
	Finished
)

func (s RenderLoopState) String() string {
	switch s {
	case Rendering:
		return "rendering"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("RenderLoopState(%d)", int(s))
	}
}

// MouseData is the last observed pointer state. Position is only valid
// while OnCanvas is true.
type MouseData struct {
	PrimaryButton   bool
	SecondaryButton bool
	X, Y            int
	OnCanvas        bool
}

// RenderData is the immutable per-frame snapshot handed to a renderer.
type RenderData struct {
	// InitialRender is true for the tick that builds the render state.
	InitialRender bool
	Width         int
	Height        int
	// Resized is true when the surface dimensions changed this frame.
	Resized bool
	// InputChanged is true for exactly one tick after the render input
	// was replaced with an unequal value.
	InputChanged bool
	// Time is milliseconds since the loop started.
	Time float64
	// DeltaTime is milliseconds since the previous frame that drew.
	DeltaTime float64
	Mouse     MouseData
}

// Renderer is a pluggable per-frame drawing strategy. S is its opaque GPU
// resource bundle, I the externally supplied parameter value.
//
// Render runs every active tick and must leave global GL state (blend mode,
// bound buffers, textures, program) in a condition that does not corrupt an
// independent renderer sharing the context. Destroy releases the GL objects
// held by a state bundle; it runs on the loop thread.
type Renderer[S any, I comparable] interface {
	InitialState(input I, data RenderData) (*S, error)
	Render(state *S, input I, data RenderData) error
	Destroy(state *S)
}

// FrameSink consumes rendered frames as tightly packed bottom-up RGBA
// rows. The slice is reused between frames; implementations must not
// retain it past the call.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Canvas binds one renderer strategy to a surface and drives it once per
// display refresh. Everything shared between the frame tick and the
// UI-facing handle methods sits behind one mutex that is never held across
// a frame boundary.
type Canvas[S any, I comparable] struct {
	surface graphics.Surface

	mu           sync.Mutex
	renderer     Renderer[S, I]
	state        *S
	stale        []func() // state teardown deferred to the loop thread
	input        I
	inputChanged bool
	loopState    RenderLoopState
	mouse        MouseData
	start        float64
	lastDraw     float64
}

// New binds renderer to surface and registers for its pointer events. The
// loop itself starts when Run is called.
func New[S any, I comparable](surface graphics.Surface, renderer Renderer[S, I], input I, state RenderLoopState) *Canvas[S, I] {
	c := &Canvas[S, I]{
		surface:   surface,
		renderer:  renderer,
		input:     input,
		loopState: state,
	}
	surface.SetPointerHandler(c)
	return c
}

// SetInput replaces the render input. A change by inequality is observed by
// exactly one subsequent tick through RenderData.InputChanged; the render
// state is preserved, strategies decide whether changed input needs
// recomputation.
func (c *Canvas[S, I]) SetInput(input I) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if input == c.input {
		return
	}
	c.input = input
	c.inputChanged = true
}

// Input returns the current render input.
func (c *Canvas[S, I]) Input() I {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetRenderer replaces the strategy. The existing render state is discarded
// (torn down on the loop thread) so the next tick performs an initial
// render against the new strategy.
func (c *Canvas[S, I]) SetRenderer(renderer Renderer[S, I]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if renderer == c.renderer {
		return
	}
	if c.state != nil {
		old, oldRenderer := c.state, c.renderer
		c.stale = append(c.stale, func() { oldRenderer.Destroy(old) })
		c.state = nil
	}
	c.renderer = renderer
}

// SetLoopState moves the loop state machine. Paused keeps the loop
// scheduled without drawing; Finished makes the next tick tear down and
// stop. Setting Rendering after the loop observed Finished does not revive
// it, the caller re-initiates by calling Run again.
func (c *Canvas[S, I]) SetLoopState(state RenderLoopState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loopState = state
}

// LoopState returns the current loop state.
func (c *Canvas[S, I]) LoopState() RenderLoopState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loopState
}

// PointerDown implements graphics.PointerHandler.
func (c *Canvas[S, I]) PointerDown(button graphics.MouseButton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch button {
	case graphics.MouseButtonPrimary:
		c.mouse.PrimaryButton = true
	case graphics.MouseButtonSecondary:
		c.mouse.SecondaryButton = true
	}
}

// PointerUp implements graphics.PointerHandler.
func (c *Canvas[S, I]) PointerUp(button graphics.MouseButton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch button {
	case graphics.MouseButtonPrimary:
		c.mouse.PrimaryButton = false
	case graphics.MouseButtonSecondary:
		c.mouse.SecondaryButton = false
	}
}

// PointerMove implements graphics.PointerHandler.
func (c *Canvas[S, I]) PointerMove(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mouse.X, c.mouse.Y = x, y
	c.mouse.OnCanvas = true
}

// PointerLeave implements graphics.PointerHandler.
func (c *Canvas[S, I]) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mouse.OnCanvas = false
}

// Run drives the loop on the calling thread until the state machine
// reaches Finished, the surface is closed, or ctx is cancelled (both of
// which force a Finished transition, so GPU resources are released and the
// chain cannot leak). Finished is terminal for this loop instance; calling
// Run again starts a fresh one that rebuilds the render state lazily.
//
// The calling thread must own the surface's GL context.
func (c *Canvas[S, I]) Run(ctx context.Context) error {
	c.mu.Lock()
	c.start = c.surface.Time()
	c.lastDraw = 0
	c.mu.Unlock()

	for {
		if ctx.Err() != nil || c.surface.ShouldClose() {
			c.SetLoopState(Finished)
		}
		alive, err := c.step(c.surface.Time())
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}
		c.surface.EndFrame()
	}
}

// RunFrames renders exactly frames ticks at a fixed timestep of stepMillis,
// reading the default framebuffer back after each tick and handing it to
// sink. Pacing is synthetic: tick i observes time i*stepMillis regardless
// of wall time. Used for recording rather than interactive display.
func (c *Canvas[S, I]) RunFrames(ctx context.Context, frames int, stepMillis float64, sink FrameSink) error {
	c.mu.Lock()
	c.start = 0
	c.lastDraw = 0
	c.mu.Unlock()

	var pixels []byte
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			c.SetLoopState(Finished)
			c.step(0)
			return err
		}
		alive, err := c.step(float64(i) * stepMillis)
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}

		width, height := c.surface.Size()
		if n := width * height * 4; len(pixels) != n {
			pixels = make([]byte, n)
		}
		gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
		if err := sink.WriteFrame(pixels); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		c.surface.EndFrame()
	}
	return nil
}

// step executes one tick of the loop state machine and reports whether the
// loop should be scheduled again.
func (c *Canvas[S, I]) step(now float64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Teardown queued by renderer swaps; must happen on the loop thread
	// because it deletes GL objects.
	for _, teardown := range c.stale {
		teardown()
	}
	c.stale = nil

	switch c.loopState {
	case Finished:
		if c.state != nil {
			c.renderer.Destroy(c.state)
			c.state = nil
		}
		return false, nil
	case Paused:
		return true, nil
	}

	width, height, resized := c.surface.Resize()
	data := RenderData{
		InitialRender: c.state == nil,
		Width:         width,
		Height:        height,
		Resized:       resized,
		InputChanged:  c.inputChanged,
		Time:          now - c.start,
		DeltaTime:     now - c.start - c.lastDraw,
		Mouse:         c.mouse,
	}

	if c.state == nil {
		state, err := c.renderer.InitialState(c.input, data)
		if err != nil {
			c.loopState = Finished
			logger.Error("initial render state failed", zap.Error(err))
			return false, fmt.Errorf("initial render state: %w", err)
		}
		c.state = state
	}

	if err := c.renderer.Render(c.state, c.input, data); err != nil {
		// A broken renderer gets no further ticks; rescheduling it
		// would spin uselessly against a known-bad program.
		c.loopState = Finished
		logger.Error("renderer failed, finishing loop", zap.Error(err))
		c.renderer.Destroy(c.state)
		c.state = nil
		return false, fmt.Errorf("render: %w", err)
	}

	c.inputChanged = false
	c.lastDraw = data.Time
	return true, nil
}
