package chart

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/andresmejia3/moodcam/internal/utils"
	xdraw "golang.org/x/image/draw"
)

// GIFWriter streams chart frames into an ffmpeg process that encodes the
// looping animation. Frames go out as raw RGBA the moment they are
// appended; only one scratch canvas is kept in memory.
type GIFWriter struct {
	path   string
	size   image.Point
	stdin  io.WriteCloser
	wait   func() error
	logs   func() string
	canvas *image.RGBA
	frames int
	closed bool
}

// DelayCentiseconds converts a frame duration into GIF delay units,
// never below one.
func DelayCentiseconds(d time.Duration) int {
	cs := int(math.Round(d.Seconds() * 100))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// NewGIFWriter creates path and starts the encoder. Every frame lasts
// frameDuration; frames of another size are scaled to size.
func NewGIFWriter(ctx context.Context, path string, size image.Point, frameDuration time.Duration) (*GIFWriter, error) {
	// An unwritable path fails here, before the session starts
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create animation file: %w", err)
	}
	f.Close()

	ffmpeg := utils.NewFFmpegCmd(ctx,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-framerate", fmt.Sprintf("100/%d", DelayCentiseconds(frameDuration)),
		"-i", "-",
		"-loop", "0",
		"-f", "gif",
		path,
	)
	utils.Detach(ffmpeg)

	stdin, err := ffmpeg.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdin pipe: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return newGIFWriter(path, size, stdin, ffmpeg.Wait, ffmpeg.Stderr.String), nil
}

func newGIFWriter(path string, size image.Point, stdin io.WriteCloser, wait func() error, logs func() string) *GIFWriter {
	return &GIFWriter{path: path, size: size, stdin: stdin, wait: wait, logs: logs}
}

// Append writes img to the encoder.
func (w *GIFWriter) Append(img image.Image) error {
	if w.closed {
		return fmt.Errorf("append to closed animation %s", w.path)
	}
	frame := w.raster(img)
	if _, err := w.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("failed to stream chart frame: %w", err)
	}
	w.frames++
	return nil
}

// raster returns img as a tightly packed RGBA image of the writer's size,
// converting into the reused canvas when needed.
func (w *GIFWriter) raster(img image.Image) *image.RGBA {
	want := image.Rectangle{Max: w.size}
	if r, ok := img.(*image.RGBA); ok && r.Rect == want && r.Stride == 4*w.size.X {
		return r
	}
	if w.canvas == nil {
		w.canvas = image.NewRGBA(want)
	}
	xdraw.ApproxBiLinear.Scale(w.canvas, want, img, img.Bounds(), xdraw.Src, nil)
	return w.canvas
}

// Frames is the number of frames written so far.
func (w *GIFWriter) Frames() int { return w.frames }

// Close flushes the encoder and waits for it. With no frames the file is removed.
func (w *GIFWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	cerr := w.stdin.Close()
	werr := w.wait()

	if w.frames == 0 {
		// ffmpeg exits non-zero on an empty input
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if werr != nil {
		return fmt.Errorf("ffmpeg failed to encode %s: %w: %s", w.path, werr, strings.TrimSpace(w.logs()))
	}
	return cerr
}
