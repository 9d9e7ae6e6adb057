// Package encoder turns raw RGBA frames into an H.264 video by piping them
// into an ffmpeg process.
package encoder

import (
	"fmt"
	"io"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Encoder streams rawvideo frames into a running ffmpeg command.
type Encoder struct {
	writer    *io.PipeWriter
	done      chan error
	frameSize int
}

// New starts an ffmpeg process encoding width x height RGBA frames at the
// given rate into outputFile. ffmpegPath overrides the binary looked up on
// PATH when non-empty. GL reads frames bottom-up, so the output is flipped
// back with vflip.
func New(width, height, fps int, outputFile, ffmpegPath string) (*Encoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", fps)
	}

	reader, writer := io.Pipe()

	inputArgs := ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"vf":      "vflip",
	}

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(outputFile, outputArgs).
		OverWriteOutput().
		WithInput(reader).
		ErrorToStdOut()
	if ffmpegPath != "" {
		cmd = cmd.SetFfmpegPath(ffmpegPath)
	}

	e := &Encoder{
		writer:    writer,
		done:      make(chan error, 1),
		frameSize: width * height * 4,
	}
	go func() {
		err := cmd.Run()
		reader.CloseWithError(err)
		e.done <- err
	}()
	return e, nil
}

// WriteFrame implements canvas.FrameSink.
func (e *Encoder) WriteFrame(pixels []byte) error {
	if len(pixels) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, expected %d", len(pixels), e.frameSize)
	}
	_, err := e.writer.Write(pixels)
	return err
}

// Close signals end of input and waits for ffmpeg to finish writing the
// container.
func (e *Encoder) Close() error {
	if err := e.writer.Close(); err != nil {
		return err
	}
	return <-e.done
}
