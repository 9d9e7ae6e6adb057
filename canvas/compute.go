package canvas

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Vertex stage shared by every compute program: a full-screen quad.
const computeVertexSource = `#version 410 core
in vec2 a_position;

void main() {
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// Two triangles covering the canonical [-1,1]² square.
var quadVertices = []float32{
	-1.0, -1.0, 1.0, -1.0, -1.0, 1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

type computeInput struct {
	texture uint32
	sampler *Uniform[int32]
}

// ComputeProgram emulates a general compute kernel over a width×height
// float4 grid using a fragment shader rendered into an off-screen
// framebuffer. Every texture it owns is exactly width×height RGBA32F with
// nearest filtering and clamp-to-edge wrapping, so shaders sampling at
// (pixel + 0.5) / dimensions hit texel centers exactly.
//
// The fragment source reads its inputs through sampler uniforms named
// u_input_0..u_input_N and receives the grid size as the vec2 uniform
// u_dimensions.
type ComputeProgram struct {
	width      int
	height     int
	inputs     []computeInput
	output     uint32
	program    uint32
	fbo        uint32
	vao        uint32
	vbo        uint32
	dimensions *Uniform[[2]float32]
	uniforms   *Set
}

// NewComputeProgram allocates inputCount input textures plus one output
// texture, compiles and links the kernel and initializes the user-defined
// uniform set from schema (nil means no user uniforms). A compile or link
// failure is a fatal initialization error.
func NewComputeProgram(width, height, inputCount int, fragmentSource string, schema *Schema) (*ComputeProgram, error) {
	program, err := NewProgram(computeVertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("compute kernel: %w", err)
	}

	p := &ComputeProgram{width: width, height: height, program: program}

	p.output = newFloatTexture(width, height)
	for i := 0; i < inputCount; i++ {
		p.inputs = append(p.inputs, computeInput{
			texture: newFloatTexture(width, height),
			sampler: NewUniform(program, fmt.Sprintf("u_input_%d", i), int32(i)),
		})
	}

	gl.GenFramebuffers(1, &p.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.output, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		p.Destroy()
		return nil, fmt.Errorf("compute framebuffer is not complete: 0x%x", status)
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	position := uint32(gl.GetAttribLocation(program, glStr("a_position")))
	gl.EnableVertexAttribArray(position)
	gl.VertexAttribPointer(position, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	p.dimensions = NewUniform(program, "u_dimensions", [2]float32{float32(width), float32(height)})
	if schema == nil {
		schema = &Schema{}
	}
	p.uniforms = schema.Initialize(program)

	return p, nil
}

func newFloatTexture(width, height int) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

// WriteInput replaces the full contents of input texture index. The data
// length must be exactly width*height*4 floats; anything else is a contract
// violation by the caller and fails before any GL call.
func (p *ComputeProgram) WriteInput(index int, data []float32) error {
	if want := p.width * p.height * 4; len(data) != want {
		return fmt.Errorf("input %d: got %d floats, want %d (%dx%d RGBA)",
			index, len(data), want, p.width, p.height)
	}
	gl.BindTexture(gl.TEXTURE_2D, p.inputs[index].texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(p.width), int32(p.height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Compute runs one pass: the kernel writes every output texel exactly once.
// No binding survives past the call; the draw program consuming the output
// shares the context and must not inherit compute state.
func (p *ComputeProgram) Compute() {
	gl.UseProgram(p.program)
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)

	for i, input := range p.inputs {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, input.texture)
		input.sampler.Apply()
	}

	gl.BindVertexArray(p.vao)
	p.dimensions.Apply()
	p.uniforms.ApplyAll()

	gl.Viewport(0, 0, int32(p.width), int32(p.height))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindVertexArray(0)
	for i := range p.inputs {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.UseProgram(0)
}

// CopyOutputToInput copies the current output texture into input texture
// index, so the next Compute reads the previous pass's result. Iterative
// algorithms repeat Compute followed by CopyOutputToInput once per pass.
func (p *ComputeProgram) CopyOutputToInput(index int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.inputs[index].texture)
	gl.CopyTexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, 0, 0, int32(p.width), int32(p.height))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReadOutput synchronously reads the whole output texture back into host
// memory. This stalls the pipeline; keep it out of the per-frame hot path.
func (p *ComputeProgram) ReadOutput() []float32 {
	out := make([]float32, p.width*p.height*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
	gl.ReadPixels(0, 0, int32(p.width), int32(p.height), gl.RGBA, gl.FLOAT, gl.Ptr(out))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return out
}

// InputTexture returns the texture handle of input index.
func (p *ComputeProgram) InputTexture(index int) uint32 { return p.inputs[index].texture }

// OutputTexture returns the output texture handle.
func (p *ComputeProgram) OutputTexture() uint32 { return p.output }

// Uniforms returns the user-defined uniform set. Values set through it are
// pushed to the GPU by the next Compute.
func (p *ComputeProgram) Uniforms() *Set { return p.uniforms }

// Destroy releases every GL object owned by the program.
func (p *ComputeProgram) Destroy() {
	for i := range p.inputs {
		gl.DeleteTextures(1, &p.inputs[i].texture)
	}
	gl.DeleteTextures(1, &p.output)
	gl.DeleteFramebuffers(1, &p.fbo)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteProgram(p.program)
}
