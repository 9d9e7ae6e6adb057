// Package glfwsurface implements graphics.Surface on a GLFW window with an
// OpenGL 4.1 core profile context.
package glfwsurface

import (
	"fmt"
	"runtime"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/avoris/glcanvas/graphics"
)

// Init initializes GLFW. Must be called from the main thread.
func Init() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	return nil
}

// Terminate shuts the windowing system down. Must be called from the main
// thread, after every surface has been destroyed.
func Terminate() {
	glfw.Terminate()
}

// Surface owns a GLFW window and its GL context.
type Surface struct {
	window       *glfw.Window
	handler      graphics.PointerHandler
	keyCallbacks map[glfw.Key]func()
	width        int
	height       int
}

// New creates a window, makes its context current on the calling thread and
// loads the GL function pointers. Invisible windows are used for recording
// and tests.
func New(width, height int, title string, visible bool) (*Surface, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("load gl: %w", err)
	}
	glfw.SwapInterval(1)

	s := &Surface{window: window, keyCallbacks: make(map[glfw.Key]func())}
	s.width, s.height = window.GetFramebufferSize()

	window.SetMouseButtonCallback(s.onMouseButton)
	window.SetCursorPosCallback(s.onCursorPos)
	window.SetCursorEnterCallback(s.onCursorEnter)
	window.SetKeyCallback(s.onKey)

	return s, nil
}

// RegisterKeyCallback registers a function to be called when key is
// pressed. Escape always closes the window.
func (s *Surface) RegisterKeyCallback(key glfw.Key, f func()) {
	s.keyCallbacks[key] = f
}

// Destroy closes the window and releases its context.
func (s *Surface) Destroy() {
	s.window.Destroy()
}

// Size implements graphics.Surface.
func (s *Surface) Size() (int, int) {
	return s.window.GetFramebufferSize()
}

// Resize implements graphics.Surface. GLFW keeps the framebuffer in sync
// with the displayed size itself; this only tracks whether the integer
// drawable size changed since the previous call.
func (s *Surface) Resize() (int, int, bool) {
	width, height := s.window.GetFramebufferSize()
	resized := width != s.width || height != s.height
	s.width, s.height = width, height
	return width, height, resized
}

// Time implements graphics.Surface.
func (s *Surface) Time() float64 {
	return glfw.GetTime() * 1000.0
}

// EndFrame implements graphics.Surface. With a swap interval of 1 the swap
// blocks until the next display refresh, pacing the render loop.
func (s *Surface) EndFrame() {
	s.window.SwapBuffers()
	glfw.PollEvents()
}

// ShouldClose implements graphics.Surface.
func (s *Surface) ShouldClose() bool {
	return s.window.ShouldClose()
}

// SetPointerHandler implements graphics.Surface.
func (s *Surface) SetPointerHandler(handler graphics.PointerHandler) {
	s.handler = handler
}

func (s *Surface) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if s.handler == nil {
		return
	}
	var b graphics.MouseButton
	switch button {
	case glfw.MouseButtonLeft:
		b = graphics.MouseButtonPrimary
	case glfw.MouseButtonRight:
		// The right button is plain tracked input state here; there is
		// no context menu to suppress on a desktop surface.
		b = graphics.MouseButtonSecondary
	default:
		return
	}
	switch action {
	case glfw.Press:
		s.handler.PointerDown(b)
	case glfw.Release:
		s.handler.PointerUp(b)
	}
}

func (s *Surface) onCursorPos(w *glfw.Window, x, y float64) {
	if s.handler == nil {
		return
	}
	// Cursor coordinates arrive in screen units; scale to drawable pixels.
	fbWidth, fbHeight := w.GetFramebufferSize()
	winWidth, winHeight := w.GetSize()
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	s.handler.PointerMove(int(x*scaleX), int(y*scaleY))
}

func (s *Surface) onCursorEnter(w *glfw.Window, entered bool) {
	if s.handler == nil {
		return
	}
	if !entered {
		s.handler.PointerLeave()
	}
}

func (s *Surface) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := s.keyCallbacks[key]; ok {
			callback()
		}
	}
}
