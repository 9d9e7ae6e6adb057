package options

type CanvasOptions struct {
	Demo       *string
	Width      *int
	Height     *int
	Record     *bool // Render offscreen into a video file instead of opening a window
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string // Overrides the ffmpeg binary found on PATH
	Verbose    *bool
}
