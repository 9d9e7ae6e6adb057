package canvas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoris/glcanvas/graphics"
)

// stubSurface fakes a display surface with a 16ms refresh.
type stubSurface struct {
	width, height int
	resized       bool
	now           float64
	handler       graphics.PointerHandler
	closeAfter    int
	frames        int
}

func newStubSurface() *stubSurface {
	return &stubSurface{width: 640, height: 480, closeAfter: 1 << 30}
}

func (s *stubSurface) Size() (int, int) { return s.width, s.height }

func (s *stubSurface) Resize() (int, int, bool) {
	resized := s.resized
	s.resized = false
	return s.width, s.height, resized
}

func (s *stubSurface) Time() float64 { return s.now }

func (s *stubSurface) EndFrame() {
	s.frames++
	s.now += 16
}

func (s *stubSurface) ShouldClose() bool { return s.frames >= s.closeAfter }

func (s *stubSurface) SetPointerHandler(h graphics.PointerHandler) { s.handler = h }

// renderLog records what a test renderer saw across one canvas lifetime.
type renderLog struct {
	initCalls int
	destroys  int
	frames    []RenderData
}

type testRenderer struct {
	log *renderLog
}

func (r testRenderer) InitialState(input int, data RenderData) (*int, error) {
	r.log.initCalls++
	state := input
	return &state, nil
}

func (r testRenderer) Render(state *int, input int, data RenderData) error {
	r.log.frames = append(r.log.frames, data)
	return nil
}

func (r testRenderer) Destroy(state *int) { r.log.destroys++ }

func TestInitialRenderBuildsStateLazily(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{log}, 7, Rendering)

	alive, err := c.step(0)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, 1, log.initCalls)
	require.Len(t, log.frames, 1)
	assert.True(t, log.frames[0].InitialRender)
	assert.Equal(t, 640, log.frames[0].Width)
	assert.Equal(t, 480, log.frames[0].Height)

	alive, err = c.step(16)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, 1, log.initCalls, "state is built once, not per tick")
	assert.False(t, log.frames[1].InitialRender)
	assert.Equal(t, 16.0, log.frames[1].Time)
	assert.Equal(t, 16.0, log.frames[1].DeltaTime)
}

func TestPauseKeepsLoopAliveWithoutDrawing(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{log}, 0, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)
	_, err = c.step(16)
	require.NoError(t, err)

	c.SetLoopState(Paused)
	alive, err := c.step(32)
	require.NoError(t, err)
	assert.True(t, alive, "paused loop stays scheduled")
	alive, err = c.step(48)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Len(t, log.frames, 2, "no draws while paused")

	c.SetLoopState(Rendering)
	_, err = c.step(96)
	require.NoError(t, err)
	require.Len(t, log.frames, 3)
	assert.Equal(t, 1, log.initCalls, "resume does not rebuild state")
	assert.False(t, log.frames[2].InitialRender)
	assert.Equal(t, 80.0, log.frames[2].DeltaTime, "delta spans the pause")
}

func TestFinishedIsTerminalAndTearsDown(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{log}, 0, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)

	c.SetLoopState(Finished)
	alive, err := c.step(16)
	require.NoError(t, err)
	assert.False(t, alive)
	assert.Equal(t, 1, log.destroys, "render state destroyed on finish")

	// Restarting renders from scratch.
	c.SetLoopState(Rendering)
	alive, err = c.step(32)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, 2, log.initCalls)
	assert.True(t, log.frames[1].InitialRender)
}

func TestInputChangeObservedByExactlyOneTick(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{log}, 1, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)
	assert.False(t, log.frames[0].InputChanged)

	c.SetInput(2)
	_, err = c.step(16)
	require.NoError(t, err)
	assert.True(t, log.frames[1].InputChanged)

	_, err = c.step(32)
	require.NoError(t, err)
	assert.False(t, log.frames[2].InputChanged, "flag clears after one tick")

	// Setting an equal input is not a change.
	c.SetInput(2)
	_, err = c.step(48)
	require.NoError(t, err)
	assert.False(t, log.frames[3].InputChanged)
	assert.Equal(t, 2, c.Input())
}

func TestRendererSwapDiscardsOldStateOnLoopThread(t *testing.T) {
	oldLog, newLog := &renderLog{}, &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{oldLog}, 0, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)

	c.SetRenderer(testRenderer{newLog})
	assert.Equal(t, 0, oldLog.destroys, "teardown waits for the loop thread")

	_, err = c.step(16)
	require.NoError(t, err)
	assert.Equal(t, 1, oldLog.destroys)
	assert.Equal(t, 1, newLog.initCalls)
	require.Len(t, newLog.frames, 1)
	assert.True(t, newLog.frames[0].InitialRender)
	assert.Empty(t, oldLog.frames[1:], "old renderer draws no further frames")
}

func TestRendererSwapToEqualRendererIsIgnored(t *testing.T) {
	log := &renderLog{}
	renderer := testRenderer{log}
	c := New[int, int](newStubSurface(), renderer, 0, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)

	c.SetRenderer(renderer)
	_, err = c.step(16)
	require.NoError(t, err)
	assert.Equal(t, 0, log.destroys)
	assert.Equal(t, 1, log.initCalls)
}

func TestResizeFlagReachesRenderer(t *testing.T) {
	surface := newStubSurface()
	log := &renderLog{}
	c := New[int, int](surface, testRenderer{log}, 0, Rendering)

	_, err := c.step(0)
	require.NoError(t, err)
	assert.False(t, log.frames[0].Resized)

	surface.width, surface.height, surface.resized = 800, 600, true
	_, err = c.step(16)
	require.NoError(t, err)
	assert.True(t, log.frames[1].Resized)
	assert.Equal(t, 800, log.frames[1].Width)
	assert.Equal(t, 600, log.frames[1].Height)
}

func TestPointerStateIsSnapshottedPerTick(t *testing.T) {
	surface := newStubSurface()
	log := &renderLog{}
	c := New[int, int](surface, testRenderer{log}, 0, Rendering)
	require.NotNil(t, surface.handler)

	surface.handler.PointerMove(30, 40)
	surface.handler.PointerDown(graphics.MouseButtonPrimary)
	_, err := c.step(0)
	require.NoError(t, err)
	mouse := log.frames[0].Mouse
	assert.True(t, mouse.PrimaryButton)
	assert.False(t, mouse.SecondaryButton)
	assert.Equal(t, 30, mouse.X)
	assert.Equal(t, 40, mouse.Y)
	assert.True(t, mouse.OnCanvas)

	surface.handler.PointerUp(graphics.MouseButtonPrimary)
	surface.handler.PointerLeave()
	_, err = c.step(16)
	require.NoError(t, err)
	mouse = log.frames[1].Mouse
	assert.False(t, mouse.PrimaryButton)
	assert.False(t, mouse.OnCanvas)
}

type failingRenderer struct {
	log      *renderLog
	failInit bool
}

func (r failingRenderer) InitialState(input int, data RenderData) (*int, error) {
	if r.failInit {
		return nil, assert.AnError
	}
	r.log.initCalls++
	state := input
	return &state, nil
}

func (r failingRenderer) Render(state *int, input int, data RenderData) error {
	return assert.AnError
}

func (r failingRenderer) Destroy(state *int) { r.log.destroys++ }

func TestInitialStateErrorFinishesLoop(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), failingRenderer{log, true}, 0, Rendering)

	alive, err := c.step(0)
	assert.Error(t, err)
	assert.False(t, alive)
	assert.Equal(t, Finished, c.LoopState())
	assert.Equal(t, 0, log.destroys, "no state was built, nothing to destroy")
}

func TestRenderErrorFinishesLoopAndDestroysState(t *testing.T) {
	log := &renderLog{}
	c := New[int, int](newStubSurface(), failingRenderer{log, false}, 0, Rendering)

	alive, err := c.step(0)
	assert.Error(t, err)
	assert.False(t, alive)
	assert.Equal(t, Finished, c.LoopState())
	assert.Equal(t, 1, log.destroys)

	alive, err = c.step(16)
	assert.NoError(t, err)
	assert.False(t, alive, "a failed loop gets no further ticks")
}

func TestRunDrivesLoopUntilSurfaceCloses(t *testing.T) {
	surface := newStubSurface()
	surface.closeAfter = 5
	log := &renderLog{}
	c := New[int, int](surface, testRenderer{log}, 0, Rendering)

	err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, log.frames, 5)
	assert.True(t, log.frames[0].InitialRender)
	for i, frame := range log.frames {
		assert.Equal(t, float64(i)*16, frame.Time)
		if i > 0 {
			assert.False(t, frame.InitialRender)
			assert.Equal(t, 16.0, frame.DeltaTime)
		}
	}
	assert.Equal(t, 1, log.destroys, "close tears the state down")
	assert.Equal(t, Finished, c.LoopState())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := &renderLog{}
	c := New[int, int](newStubSurface(), testRenderer{log}, 0, Rendering)

	err := c.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, log.frames)
	assert.Equal(t, Finished, c.LoopState())
}

func TestRenderLoopStateString(t *testing.T) {
	assert.Equal(t, "rendering", Rendering.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "finished", Finished.String())
}
