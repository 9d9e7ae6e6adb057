package boids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSlotsMatchKernelUniforms(t *testing.T) {
	slots := newComputeSlots()

	assert.Equal(t, 10, slots.schema.Len())
	assert.Equal(t, []string{
		"u_space",
		"u_cohesion",
		"u_separation",
		"u_alignment",
		"u_edge_avoidance",
		"u_avoidance_radius",
		"u_detection_radius",
		"u_min_velocity",
		"u_max_velocity",
		"u_max_acceleration",
	}, slots.schema.Names())

	assert.Equal(t, 0, slots.space.Index())
	assert.Equal(t, 9, slots.maxAcceleration.Index())
}

func TestDefaultInput(t *testing.T) {
	input := DefaultInput()

	assert.Less(t, input.AvoidanceRadius, input.DetectionRadius)
	assert.LessOrEqual(t, input.MinVelocity, input.MaxVelocity)
	assert.Positive(t, input.MaxAcceleration)
}
