package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteInputRejectsWrongLength(t *testing.T) {
	p := &ComputeProgram{
		width:  4,
		height: 4,
		inputs: make([]computeInput, 1),
	}

	err := p.WriteInput(0, make([]float32, 4*4*4-1))
	assert.Error(t, err)

	err = p.WriteInput(0, make([]float32, 0))
	assert.Error(t, err)
}
