// Package fractalclock renders a fractal clock: hour and minute hands that
// recursively sprout scaled copies of themselves from their tips. Node
// positions are expanded on the GPU, one clock node per texel; the first
// ten recursion levels are prefilled on the CPU so a single texture row
// already holds a full subtree.
package fractalclock

import (
	"fmt"

	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/avoris/glcanvas/canvas"
)

// MaxRecursionDepth is the deepest tree the node texture can hold.
const MaxRecursionDepth = 16

const (
	textureRecursionWidth  = 10
	textureRecursionHeight = MaxRecursionDepth - textureRecursionWidth + 1
	textureWidth           = 1 << textureRecursionWidth
	textureHeight          = 1 << textureRecursionHeight
	prefilledNodes         = textureWidth
)

// A full day-of-the-hour-hand rotation in animated time, milliseconds.
const completeRotation = 12 * 60 * 60 * 10

// BlendConstant is a GL blend equation or multiplier selectable from the
// demo's input.
type BlendConstant uint32

const (
	Addition                 BlendConstant = gl.FUNC_ADD
	Subtraction              BlendConstant = gl.FUNC_SUBTRACT
	ReverseSubtraction       BlendConstant = gl.FUNC_REVERSE_SUBTRACT
	Zero                     BlendConstant = gl.ZERO
	One                      BlendConstant = gl.ONE
	SourceColor              BlendConstant = gl.SRC_COLOR
	OneMinusSourceColor      BlendConstant = gl.ONE_MINUS_SRC_COLOR
	DestinationColor         BlendConstant = gl.DST_COLOR
	OneMinusDestinationColor BlendConstant = gl.ONE_MINUS_DST_COLOR
	SourceAlpha              BlendConstant = gl.SRC_ALPHA
	OneMinusSourceAlpha      BlendConstant = gl.ONE_MINUS_SRC_ALPHA
	DestinationAlpha         BlendConstant = gl.DST_ALPHA
	OneMinusDestinationAlpha BlendConstant = gl.ONE_MINUS_DST_ALPHA
	SourceAlphaSaturate      BlendConstant = gl.SRC_ALPHA_SATURATE
)

func (c BlendConstant) String() string {
	switch c {
	case Addition:
		return "Addition"
	case Subtraction:
		return "Subtraction"
	case ReverseSubtraction:
		return "Reverse Subtraction"
	case Zero:
		return "Zero"
	case One:
		return "One"
	case SourceColor:
		return "Source Color"
	case OneMinusSourceColor:
		return "One Minus Source Color"
	case DestinationColor:
		return "Destination Color"
	case OneMinusDestinationColor:
		return "One Minus Destination Color"
	case SourceAlpha:
		return "Source Alpha"
	case OneMinusSourceAlpha:
		return "One Minus Source Alpha"
	case DestinationAlpha:
		return "Destination Alpha"
	case OneMinusDestinationAlpha:
		return "One Minus Destination Alpha"
	case SourceAlphaSaturate:
		return "Source Alpha Saturate"
	default:
		return fmt.Sprintf("BlendConstant(%d)", uint32(c))
	}
}

// BlendEquations are the constants valid for Input.BlendEquationRGB and
// Input.BlendEquationAlpha.
var BlendEquations = []BlendConstant{
	Addition,
	Subtraction,
	ReverseSubtraction,
}

// BlendMultipliers are the constants valid for the four blend factor
// fields of Input.
var BlendMultipliers = []BlendConstant{
	Zero,
	One,
	SourceColor,
	OneMinusSourceColor,
	DestinationColor,
	OneMinusDestinationColor,
	SourceAlpha,
	OneMinusSourceAlpha,
	DestinationAlpha,
	OneMinusDestinationAlpha,
	SourceAlphaSaturate,
}

// Input controls the clock's shape and blending. Angles are in degrees,
// measured clockwise from twelve o'clock.
type Input struct {
	HourAngle   float32
	MinuteAngle float32
	// Animate drives the angles from elapsed time instead of the fields
	// above, at one full hour-hand revolution per 432 seconds.
	Animate bool
	// Size is the total length of the longest branch chain.
	Size float32
	// RecursionDepth is the number of tree levels drawn, at most
	// MaxRecursionDepth.
	RecursionDepth uint32
	// HourRatio is the hour hand length relative to the minute hand.
	HourRatio float32
	// SizeFactor scales each child hand relative to its parent.
	SizeFactor float32
	Color      [4]float32

	BlendEquationRGB   BlendConstant
	BlendEquationAlpha BlendConstant
	BlendSrcRGB        BlendConstant
	BlendDstRGB        BlendConstant
	BlendSrcAlpha      BlendConstant
	BlendDstAlpha      BlendConstant
}

// DefaultInput returns the parameters the interactive demo starts with.
func DefaultInput() Input {
	return Input{
		HourAngle:          310,
		MinuteAngle:        60,
		Animate:            true,
		Size:               1,
		RecursionDepth:     8,
		HourRatio:          0.75,
		SizeFactor:         0.75,
		Color:              [4]float32{0.251, 1.0, 0.1255, 0.5},
		BlendEquationRGB:   Addition,
		BlendEquationAlpha: Addition,
		BlendSrcRGB:        SourceAlpha,
		BlendDstRGB:        DestinationAlpha,
		BlendSrcAlpha:      One,
		BlendDstAlpha:      One,
	}
}

type computeSlots struct {
	schema      *canvas.Schema
	hourStart   canvas.Slot[[2]float32]
	minuteStart canvas.Slot[[2]float32]
	hour        canvas.Slot[[2]float32]
	minute      canvas.Slot[[2]float32]
}

func newComputeSlots() computeSlots {
	schema := &canvas.Schema{}
	return computeSlots{
		schema:      schema,
		hourStart:   canvas.Declare(schema, "u_hour_start", [2]float32{}),
		minuteStart: canvas.Declare(schema, "u_minute_start", [2]float32{}),
		hour:        canvas.Declare(schema, "u_hour", [2]float32{}),
		minute:      canvas.Declare(schema, "u_minute", [2]float32{}),
	}
}

// Renderer is the fractal clock strategy.
type Renderer struct{}

// State is the GPU resource bundle of one mounted clock canvas.
type State struct {
	slots        computeSlots
	inputBuffer  []float32
	compute      *canvas.ComputeProgram
	program      uint32
	vao          uint32
	vbo          uint32
	dimensions   *canvas.Uniform[[2]float32]
	inputSampler *canvas.Uniform[int32]
	scale        *canvas.Uniform[[2]float32]
	color        *canvas.Uniform[[4]float32]
}

// InitialState implements canvas.Renderer.
func (Renderer) InitialState(input Input, data canvas.RenderData) (*State, error) {
	var maxTextureSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTextureSize)
	if int(maxTextureSize) < textureWidth {
		return nil, fmt.Errorf("max texture size %d is below the %d required for the node texture", maxTextureSize, textureWidth)
	}

	slots := newComputeSlots()
	compute, err := canvas.NewComputeProgram(textureWidth, textureHeight, 1, computeFragmentSource, slots.schema)
	if err != nil {
		return nil, fmt.Errorf("fractal clock compute: %w", err)
	}

	program, err := canvas.NewProgram(renderVertexSource, renderFragmentSource)
	if err != nil {
		compute.Destroy()
		return nil, fmt.Errorf("fractal clock render: %w", err)
	}

	state := &State{
		slots:        slots,
		inputBuffer:  make([]float32, 4*textureWidth*textureHeight),
		compute:      compute,
		program:      program,
		dimensions:   canvas.NewUniform(program, "u_dimensions", [2]float32{textureWidth, textureHeight}),
		inputSampler: canvas.NewUniform(program, "u_input", int32(0)),
		scale:        canvas.NewUniform(program, "u_scale", [2]float32{1, 1}),
		color:        canvas.NewUniform(program, "u_color", [4]float32{1, 1, 1, 1}),
	}

	vertices := make([]float32, 1<<(MaxRecursionDepth+2))
	for i := range vertices {
		vertices[i] = float32(i)
	}
	gl.GenVertexArrays(1, &state.vao)
	gl.GenBuffers(1, &state.vbo)
	gl.BindVertexArray(state.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, state.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	index := uint32(gl.GetAttribLocation(program, gl.Str("a_index\x00")))
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointer(index, 1, gl.FLOAT, false, 4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return state, nil
}

// Render implements canvas.Renderer. Node positions are recomputed only
// when something changed or the clock is animating; the draw pass always
// runs so resizes repaint from the existing node texture.
func (Renderer) Render(state *State, input Input, data canvas.RenderData) error {
	if data.Width == 0 || data.Height == 0 {
		return nil
	}

	if data.InputChanged || data.InitialRender || input.Animate {
		hourAngle, minuteAngle := handAngles(input, data.Time)

		hourSin, hourCos := math32.Sincos(hourAngle * math32.Pi / 180)
		minuteSin, minuteCos := math32.Sincos(minuteAngle * math32.Pi / 180)
		hourStart := [2]float32{hourCos * input.HourRatio, hourSin * input.HourRatio}
		minuteStart := [2]float32{minuteCos, minuteSin}
		hour := [2]float32{hourStart[0] * input.SizeFactor, hourStart[1] * input.SizeFactor}
		minute := [2]float32{minuteCos * input.SizeFactor, minuteSin * input.SizeFactor}

		set := state.compute.Uniforms()
		canvas.SetAt(set, state.slots.hourStart, hourStart)
		canvas.SetAt(set, state.slots.minuteStart, minuteStart)
		canvas.SetAt(set, state.slots.hour, hour)
		canvas.SetAt(set, state.slots.minute, minute)

		prefillNodes(state.inputBuffer, hourStart, minuteStart, hour, minute)
		if err := state.compute.WriteInput(0, state.inputBuffer); err != nil {
			return err
		}

		// The prefill covers the first textureWidth nodes; each pass
		// doubles the covered depth by expanding every node's children.
		passes := 1
		if input.RecursionDepth > textureRecursionWidth {
			passes = int(input.RecursionDepth-textureRecursionWidth) + 1
		}
		for i := 0; i < passes; i++ {
			state.compute.Compute()
			state.compute.CopyOutputToInput(0)
		}
	}

	gl.UseProgram(state.program)
	gl.BindVertexArray(state.vao)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, state.compute.OutputTexture())

	state.dimensions.Apply()
	state.inputSampler.Apply()
	scale := input.Size / ((1 - math32.Pow(input.SizeFactor, float32(input.RecursionDepth))) / (1 - input.SizeFactor))
	state.scale.ApplyValue([2]float32{float32(data.Height) / float32(data.Width) * scale, scale})
	state.color.ApplyValue(input.Color)

	gl.Viewport(0, 0, int32(data.Width), int32(data.Height))
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.BLEND)
	gl.BlendEquationSeparate(uint32(input.BlendEquationRGB), uint32(input.BlendEquationAlpha))
	gl.BlendFuncSeparate(
		uint32(input.BlendSrcRGB),
		uint32(input.BlendDstRGB),
		uint32(input.BlendSrcAlpha),
		uint32(input.BlendDstAlpha),
	)

	gl.DrawArrays(gl.LINES, 0, LineVertexCount(input.RecursionDepth))
	gl.Disable(gl.BLEND)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	return nil
}

// Destroy implements canvas.Renderer.
func (Renderer) Destroy(state *State) {
	state.compute.Destroy()
	gl.DeleteBuffers(1, &state.vbo)
	gl.DeleteVertexArrays(1, &state.vao)
	gl.DeleteProgram(state.program)
}

// handAngles returns the hour and minute angles in degrees. Animated
// clocks derive both from elapsed milliseconds, running a full hour-hand
// revolution every completeRotation milliseconds.
func handAngles(input Input, timeMillis float64) (hour, minute float32) {
	if !input.Animate {
		return input.HourAngle, input.MinuteAngle
	}
	const oneHourRotation = completeRotation / 12
	elapsed := int64(timeMillis)
	hour = float32(elapsed%completeRotation) / completeRotation * 360
	minute = float32(elapsed%oneHourRotation) / oneHourRotation * 360
	return hour, minute
}

// prefillNodes computes the first prefilledNodes tree nodes on the CPU so
// the GPU expansion starts from a full texture row. A node packs position
// in xy and its hand vector in zw; node 2i+2 and 2i+3 are the hour and
// minute children of node i, each child's hand being the parent's rotated
// by the corresponding hand vector.
func prefillNodes(buffer []float32, hourStart, minuteStart, hour, minute [2]float32) {
	buffer[0], buffer[1], buffer[2], buffer[3] = hourStart[0], hourStart[1], hourStart[0], hourStart[1]
	buffer[4], buffer[5], buffer[6], buffer[7] = minuteStart[0], minuteStart[1], minuteStart[0], minuteStart[1]

	for i := 2; i < prefilledNodes; i++ {
		parent := i/2 - 1
		px, py := buffer[parent*4], buffer[parent*4+1]
		ax, ay := buffer[parent*4+2], buffer[parent*4+3]

		hand := hour
		if i%2 != 0 {
			hand = minute
		}
		// Complex multiplication: rotate and scale the parent's hand.
		nx := ax*hand[0] - ay*hand[1]
		ny := ax*hand[1] + ay*hand[0]

		buffer[i*4] = px + nx
		buffer[i*4+1] = py + ny
		buffer[i*4+2] = nx
		buffer[i*4+3] = ny
	}
}

// LineVertexCount returns how many vertices the line pass draws for a
// tree of the given depth: two vertices per line, two lines per node,
// 2^depth-1 nodes.
func LineVertexCount(depth uint32) int32 {
	return int32(2 * 2 * ((1 << depth) - 1))
}
