package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	_, err := New(0, 720, 60, "out.mp4", "")
	assert.Error(t, err)

	_, err = New(1280, -1, 60, "out.mp4", "")
	assert.Error(t, err)

	_, err = New(1280, 720, 0, "out.mp4", "")
	assert.Error(t, err)
}

func TestWriteFrameRejectsWrongSize(t *testing.T) {
	e := &Encoder{frameSize: 2 * 2 * 4}

	err := e.WriteFrame(make([]byte, 15))
	assert.Error(t, err)

	err = e.WriteFrame(nil)
	assert.Error(t, err)
}
