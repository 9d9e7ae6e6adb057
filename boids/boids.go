// Package boids implements a flocking simulation. Boid physics run as a
// GPU compute pass over a small float texture; the draw pass renders one
// triangle per boid, oriented along its velocity.
package boids

import (
	"fmt"
	"math/rand"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/avoris/glcanvas/canvas"
)

const (
	textureWidth    = 10
	textureHeight   = 10
	boidCount       = textureWidth * textureHeight
	verticesPerBoid = 3
)

// Input are the flocking parameters. Positions live in a box with
// half-extents (1/aspect, 1); radii and velocities are in those units.
type Input struct {
	// Weight for boids being attracted to the group center of mass.
	Cohesion float32
	// Weight for boids being repelled by each other.
	Separation float32
	// Weight for boids steering toward the same direction.
	Alignment float32
	// Weight for boids avoiding the edges of the space.
	EdgeAvoidance float32
	// Radius within which boids repel each other.
	AvoidanceRadius float32
	// Radius of boid vision.
	DetectionRadius float32
	MinVelocity     float32
	MaxVelocity     float32
	MaxAcceleration float32
}

// DefaultInput returns the parameters the interactive demo starts with.
func DefaultInput() Input {
	return Input{
		Cohesion:        0.5,
		Separation:      0.5,
		Alignment:       0.5,
		EdgeAvoidance:   0.5,
		AvoidanceRadius: 0.1,
		DetectionRadius: 0.2,
		MinVelocity:     0.005,
		MaxVelocity:     0.005,
		MaxAcceleration: 0.005,
	}
}

// computeSlots holds the typed handles into the compute kernel's uniform
// set, indexed in declaration order.
type computeSlots struct {
	schema          *canvas.Schema
	space           canvas.Slot[[2]float32]
	cohesion        canvas.Slot[float32]
	separation      canvas.Slot[float32]
	alignment       canvas.Slot[float32]
	edgeAvoidance   canvas.Slot[float32]
	avoidanceRadius canvas.Slot[float32]
	detectionRadius canvas.Slot[float32]
	minVelocity     canvas.Slot[float32]
	maxVelocity     canvas.Slot[float32]
	maxAcceleration canvas.Slot[float32]
}

func newComputeSlots() computeSlots {
	schema := &canvas.Schema{}
	return computeSlots{
		schema:          schema,
		space:           canvas.Declare(schema, "u_space", [2]float32{1, 1}),
		cohesion:        canvas.Declare(schema, "u_cohesion", float32(0)),
		separation:      canvas.Declare(schema, "u_separation", float32(0)),
		alignment:       canvas.Declare(schema, "u_alignment", float32(0)),
		edgeAvoidance:   canvas.Declare(schema, "u_edge_avoidance", float32(0)),
		avoidanceRadius: canvas.Declare(schema, "u_avoidance_radius", float32(0)),
		detectionRadius: canvas.Declare(schema, "u_detection_radius", float32(0)),
		minVelocity:     canvas.Declare(schema, "u_min_velocity", float32(0)),
		maxVelocity:     canvas.Declare(schema, "u_max_velocity", float32(0)),
		maxAcceleration: canvas.Declare(schema, "u_max_acceleration", float32(0)),
	}
}

// Renderer is the boids strategy.
type Renderer struct{}

// State is the GPU resource bundle of one mounted boids canvas.
type State struct {
	slots        computeSlots
	compute      *canvas.ComputeProgram
	program      uint32
	vao          uint32
	vbo          uint32
	dimensions   *canvas.Uniform[[2]float32]
	inputSampler *canvas.Uniform[int32]
	aspect       *canvas.Uniform[float32]
}

// InitialState implements canvas.Renderer. Boid state is packed one boid
// per texel: position in xy, velocity in zw, seeded uniformly in [-1,1].
func (Renderer) InitialState(input Input, data canvas.RenderData) (*State, error) {
	slots := newComputeSlots()
	compute, err := canvas.NewComputeProgram(textureWidth, textureHeight, 1, computeFragmentSource, slots.schema)
	if err != nil {
		return nil, fmt.Errorf("boids compute: %w", err)
	}

	initial := make([]float32, boidCount*4)
	for i := range initial {
		initial[i] = 2.0*rand.Float32() - 1.0
	}
	if err := compute.WriteInput(0, initial); err != nil {
		compute.Destroy()
		return nil, err
	}

	program, err := canvas.NewProgram(renderVertexSource, renderFragmentSource)
	if err != nil {
		compute.Destroy()
		return nil, fmt.Errorf("boids render: %w", err)
	}

	state := &State{
		slots:        slots,
		compute:      compute,
		program:      program,
		dimensions:   canvas.NewUniform(program, "u_dimensions", [2]float32{textureWidth, textureHeight}),
		inputSampler: canvas.NewUniform(program, "u_input", int32(0)),
		aspect:       canvas.NewUniform(program, "u_aspect", float32(0)),
	}

	vertices := make([]float32, boidCount*verticesPerBoid)
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

// Render implements canvas.Renderer: one physics pass, ping-pong the result
// back into the input, then draw the flock from the output texture.
func (Renderer) Render(state *State, input Input, data canvas.RenderData) error {
	if data.Width == 0 || data.Height == 0 {
		return nil
	}
	aspect := float32(data.Height) / float32(data.Width)

	set := state.compute.Uniforms()
	canvas.SetAt(set, state.slots.space, [2]float32{1 / aspect, 1})
	canvas.SetAt(set, state.slots.cohesion, input.Cohesion)
	canvas.SetAt(set, state.slots.separation, input.Separation)
	canvas.SetAt(set, state.slots.alignment, input.Alignment)
	canvas.SetAt(set, state.slots.edgeAvoidance, input.EdgeAvoidance)
	canvas.SetAt(set, state.slots.avoidanceRadius, input.AvoidanceRadius)
	canvas.SetAt(set, state.slots.detectionRadius, input.DetectionRadius)
	canvas.SetAt(set, state.slots.minVelocity, input.MinVelocity)
	canvas.SetAt(set, state.slots.maxVelocity, input.MaxVelocity)
	canvas.SetAt(set, state.slots.maxAcceleration, input.MaxAcceleration)

	state.compute.Compute()
	state.compute.CopyOutputToInput(0)

	gl.UseProgram(state.program)
	gl.BindVertexArray(state.vao)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, state.compute.OutputTexture())

	state.dimensions.Apply()
	state.inputSampler.Apply()
	state.aspect.ApplyValue(aspect)

	gl.Viewport(0, 0, int32(data.Width), int32(data.Height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.DrawArrays(gl.TRIANGLES, 0, boidCount*verticesPerBoid)

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
