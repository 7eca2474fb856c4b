package video

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"gocv.io/x/gocv"
)

// Capture reads frames from a camera device or a video file/URL and scales
// them to a fixed geometry.
type Capture struct {
	vc   *gocv.VideoCapture
	size image.Point
	fps  float64
}

// Open starts capturing from source. A numeric source is a device index,
// anything else is handed to OpenCV as a file path or stream URL. When the
// backend reports no frame rate, fallbackFPS is used.
func Open(source string, size image.Point, fallbackFPS float64) (*Capture, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if id, convErr := strconv.Atoi(source); convErr == nil {
		vc, err = gocv.OpenVideoCapture(id)
	} else {
		vc, err = gocv.VideoCaptureFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %q: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture %q is not available", source)
	}

	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = fallbackFPS
	}
	return &Capture{vc: vc, size: size, fps: fps}, nil
}

// FPS is the capture rate reported by the device, or the fallback.
func (c *Capture) FPS() float64 { return c.fps }

// Read grabs the next frame. io.EOF means the device stopped delivering.
func (c *Capture) Read() (pipeline.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}

	if mat.Cols() == c.size.X && mat.Rows() == c.size.Y {
		return &Frame{Mat: mat}, nil
	}

	resized := gocv.NewMat()
	gocv.Resize(mat, &resized, c.size, 0, 0, gocv.InterpolationLinear)
	mat.Close()
	return &Frame{Mat: resized}, nil
}

func (c *Capture) Close() error {
	return c.vc.Close()
}
