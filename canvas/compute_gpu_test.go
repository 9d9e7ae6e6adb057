package canvas

import (
	"runtime"
	"testing"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestContext creates a hidden window with a current GL context, or
// skips the test on machines without GL support (CI, containers).
func newTestContext(t *testing.T) {
	t.Helper()
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		t.Skipf("skipping GPU test, glfw init failed: %v", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(64, 64, "compute test", nil, nil)
	if err != nil {
		glfw.Terminate()
		t.Skipf("skipping GPU test, window creation failed: %v", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		t.Skipf("skipping GPU test, gl init failed: %v", err)
	}
	t.Cleanup(func() {
		window.Destroy()
		glfw.Terminate()
	})
}

const identityKernel = `#version 410 core
precision highp float;
uniform sampler2D u_input_0;
uniform vec2 u_dimensions;
out vec4 fragColor;
void main() {
    fragColor = texture(u_input_0, gl_FragCoord.xy / u_dimensions);
}
`

func TestComputePingPongPreservesData(t *testing.T) {
	newTestContext(t)

	const width, height = 8, 8
	p, err := NewComputeProgram(width, height, 1, identityKernel, &Schema{})
	require.NoError(t, err)
	defer p.Destroy()

	input := make([]float32, width*height*4)
	for i := range input {
		input[i] = float32(i)*0.25 - 16
	}
	require.NoError(t, p.WriteInput(0, input))

	// An identity kernel round-tripped through the ping-pong copy must be
	// bit-stable: float texels are never quantized on the way through.
	for round := 0; round < 4; round++ {
		p.Compute()
		assert.Equal(t, input, p.ReadOutput(), "round %d", round)
		p.CopyOutputToInput(0)
	}
}

const scaleKernel = `#version 410 core
precision highp float;
uniform sampler2D u_input_0;
uniform vec2 u_dimensions;
uniform float u_factor;
out vec4 fragColor;
void main() {
    fragColor = u_factor * texture(u_input_0, gl_FragCoord.xy / u_dimensions);
}
`

func TestComputeAppliesUniformSet(t *testing.T) {
	newTestContext(t)

	const width, height = 4, 4
	schema := &Schema{}
	factor := Declare(schema, "u_factor", float32(1))

	p, err := NewComputeProgram(width, height, 1, scaleKernel, schema)
	require.NoError(t, err)
	defer p.Destroy()

	input := make([]float32, width*height*4)
	for i := range input {
		input[i] = float32(i + 1)
	}
	require.NoError(t, p.WriteInput(0, input))

	SetAt(p.Uniforms(), factor, 3)
	assert.Equal(t, float32(3), At(p.Uniforms(), factor))
	p.Compute()

	output := p.ReadOutput()
	for i := range input {
		assert.Equal(t, input[i]*3, output[i], "texel component %d", i)
	}
}

func TestNewComputeProgramRejectsBrokenKernel(t *testing.T) {
	newTestContext(t)

	_, err := NewComputeProgram(4, 4, 1, "#version 410 core\nvoid main() { nonsense; }", &Schema{})
	assert.Error(t, err)
}
