// Package canvas provides the rendering core: shader uniform management, a
// fragment-shader based compute abstraction and the render loop state
// machine that drives pluggable renderer strategies.
package canvas

import (
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Value enumerates the types that can be bound to a uniform slot.
type Value interface {
	float32 | [2]float32 | [3]float32 | [4]float32 |
		int32 | [2]int32 | [3]int32 | [4]int32
}

// Uniform wraps one shader uniform location together with the CPU-side
// value bound to it. Mutation and the GPU write are decoupled: SetValue is
// pure data, Apply is the only operation that talks to the GPU.
type Uniform[T Value] struct {
	name     string
	location int32
	value    T
}

// NewUniform looks up name in program. A missing location is recoverable:
// a warning listing the program's active uniforms is emitted and the
// uniform becomes inert (applies turn into no-ops).
func NewUniform[T Value](program uint32, name string, value T) *Uniform[T] {
	location := gl.GetUniformLocation(program, glStr(name))
	if location < 0 {
		logger.Warn("uniform not declared by program",
			zap.String("uniform", name),
			zap.String("declared", strings.Join(activeUniformNames(program), ", ")))
	}
	return &Uniform[T]{name: name, location: location, value: value}
}

// Name returns the uniform's name in the shader source.
func (u *Uniform[T]) Name() string { return u.name }

// Value returns the held CPU-side value.
func (u *Uniform[T]) Value() T { return u.value }

// SetValue replaces the held value without touching the GPU.
func (u *Uniform[T]) SetValue(value T) { u.value = value }

// Apply pushes the held value to the GPU location. The owning program must
// be in use. Inert uniforms warn and do nothing.
func (u *Uniform[T]) Apply() {
	if u.location < 0 {
		logger.Warn("skipping uniform without a location", zap.String("uniform", u.name))
		return
	}
	switch v := any(u.value).(type) {
	case float32:
		gl.Uniform1f(u.location, v)
	case [2]float32:
		gl.Uniform2f(u.location, v[0], v[1])
	case [3]float32:
		gl.Uniform3f(u.location, v[0], v[1], v[2])
	case [4]float32:
		gl.Uniform4f(u.location, v[0], v[1], v[2], v[3])
	case int32:
		gl.Uniform1i(u.location, v)
	case [2]int32:
		gl.Uniform2i(u.location, v[0], v[1])
	case [3]int32:
		gl.Uniform3i(u.location, v[0], v[1], v[2])
	case [4]int32:
		gl.Uniform4i(u.location, v[0], v[1], v[2], v[3])
	}
}

// ApplyValue sets and immediately pushes a value.
func (u *Uniform[T]) ApplyValue(value T) {
	u.SetValue(value)
	u.Apply()
}

func activeUniformNames(program uint32) []string {
	var count int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	names := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		buf := make([]byte, 256)
		gl.GetActiveUniform(program, uint32(i), int32(len(buf))-1, &length, &size, &xtype, &buf[0])
		names = append(names, string(buf[:length]))
	}
	return names
}

func glStr(name string) *uint8 {
	return gl.Str(name + "\x00")
}
