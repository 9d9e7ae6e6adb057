// Package graphics defines the drawable-surface abstraction the render loop
// is driven by.
package graphics

// MouseButton identifies a tracked pointer button.
type MouseButton int

const (
	MouseButtonPrimary MouseButton = iota
	MouseButtonSecondary
)

// PointerHandler receives pointer events in the order the host delivers
// them, independent of the frame cadence.
type PointerHandler interface {
	PointerDown(button MouseButton)
	PointerUp(button MouseButton)
	PointerMove(x, y int)
	PointerLeave()
}

// Surface is a drawable surface with an attached event pump.
type Surface interface {
	// Size returns the current drawable size in pixels.
	Size() (width, height int)

	// Resize reconciles the drawable size with the displayed size and
	// reports the size along with whether it changed since the previous
	// call.
	Resize() (width, height int, resized bool)

	// Time returns milliseconds since surface creation.
	Time() float64

	// EndFrame presents the drawn frame and pumps pending events. It is
	// expected to pace the caller to the display refresh.
	EndFrame()

	// ShouldClose reports whether the host asked the surface to go away.
	ShouldClose() bool

	// SetPointerHandler registers the receiver of pointer events.
	SetPointerHandler(handler PointerHandler)
}
