package video

import (
	"fmt"
	"image"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"gocv.io/x/gocv"
)

// Writer encodes annotated frames into a video file at a fixed rate.
type Writer struct {
	vw   *gocv.VideoWriter
	path string
	size image.Point
}

// NewWriter opens path with the given FourCC codec ("XVID" for .avi).
func NewWriter(path, codec string, fps float64, size image.Point) (*Writer, error) {
	vw, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open video writer %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("video writer %s could not be opened with codec %s", path, codec)
	}
	return &Writer{vw: vw, path: path, size: size}, nil
}

func (w *Writer) Write(f pipeline.Frame) error {
	vf, ok := f.(*Frame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", f)
	}
	if vf.Mat.Cols() != w.size.X || vf.Mat.Rows() != w.size.Y {
		return fmt.Errorf("frame is %dx%d, writer expects %dx%d", vf.Mat.Cols(), vf.Mat.Rows(), w.size.X, w.size.Y)
	}
	return w.vw.Write(vf.Mat)
}

func (w *Writer) Close() error {
	return w.vw.Close()
}
