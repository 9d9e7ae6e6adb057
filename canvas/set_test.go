package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaIndicesAreContiguous(t *testing.T) {
	schema := &Schema{}
	a := Declare(schema, "u_a", float32(0))
	b := Declare(schema, "u_b", [2]float32{})
	c := Declare(schema, "u_c", int32(0))
	d := Declare(schema, "u_d", [4]float32{})

	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, b.Index())
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, 3, d.Index())
	assert.Equal(t, 4, schema.Len())
}

func TestSchemaNamesFollowDeclarationOrder(t *testing.T) {
	schema := &Schema{}
	Declare(schema, "u_space", [2]float32{1, 1})
	Declare(schema, "u_cohesion", float32(0))
	Declare(schema, "u_separation", float32(0))

	assert.Equal(t, []string{"u_space", "u_cohesion", "u_separation"}, schema.Names())
}
