package pipeline

import (
	"context"
	"image"
	"image/color"

	"github.com/andresmejia3/moodcam/internal/chart"
	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
)

// Frame is one captured raster. Implementations usually own native memory,
// so every Frame handed out must be closed by its receiver.
type Frame interface {
	Clone() Frame
	// Encode returns the frame as JPEG bytes for out-of-process classifiers.
	Encode() ([]byte, error)
	Close() error
}

// Source yields frames at the capture rate. Read returns io.EOF once the
// stream is exhausted or the device stops delivering frames.
type Source interface {
	Read() (Frame, error)
	FPS() float64
	Close() error
}

// Classifier is the opaque emotion model. The call blocks the loop.
type Classifier interface {
	Detect(f Frame) ([]types.DetectedFace, error)
}

// Annotator draws the held detection (box and text) onto a frame in place.
type Annotator interface {
	Annotate(f Frame, st DetectionState)
}

// VideoSink receives one annotated frame per analyzed tick.
type VideoSink interface {
	Write(f Frame) error
	Close() error
}

// ChartRenderer draws the live confidence bar chart and captures it as a
// fixed-size raster. A capture that cannot be reshaped is reported through
// the result, not as an error.
type ChartRenderer interface {
	Render(c emotion.Confidences) chart.Capture
}

// AnimationSink collects the captured chart frames.
type AnimationSink interface {
	Append(img image.Image) error
	Close() error
}

// Display presents the annotated stream and the color panel. Show reports
// whether the user asked to quit.
type Display interface {
	Show(view Frame, panel color.RGBA) (quit bool)
	Close() error
}

// Recorder persists samples. A failing recorder ends the session.
type Recorder interface {
	Record(ctx context.Context, s types.Sample) error
	Close(ctx context.Context, sum Summary) error
}

// Publisher broadcasts samples. Failures are logged and never fatal.
type Publisher interface {
	Publish(s types.Sample) error
	Close() error
}

// Progress is notified once per capture tick.
type Progress interface {
	Add(n int) error
}

// TrendRenderer draws the cumulative series into an image file.
type TrendRenderer interface {
	RenderTrend(series []chart.Series, path string) error
}
