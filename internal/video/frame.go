package video

import (
	"fmt"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"gocv.io/x/gocv"
)

// Frame wraps a BGR gocv.Mat. The Mat is native memory and must be closed.
type Frame struct {
	Mat gocv.Mat
}

func (f *Frame) Clone() pipeline.Frame {
	return &Frame{Mat: f.Mat.Clone()}
}

// Encode compresses the frame to JPEG for the classifier worker.
func (f *Frame) Encode() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.Mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory that is freed by Close.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *Frame) Close() error {
	return f.Mat.Close()
}
