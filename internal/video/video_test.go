package video

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/types"
	"gocv.io/x/gocv"
)

func newFrame(t *testing.T, w, h int) *Frame {
	t.Helper()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	return &Frame{Mat: mat}
}

func TestFrameEncodeIsJPEG(t *testing.T) {
	f := newFrame(t, 64, 48)
	defer f.Close()

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("Expected JPEG SOI marker, got % x", data[:2])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := newFrame(t, 64, 48)
	defer f.Close()
	view := f.Clone().(*Frame)
	defer view.Close()

	st := pipeline.EmptyState()
	face := types.DetectedFace{
		Region:      types.Region{X: 10, Y: 20, Width: 20, Height: 20},
		Confidences: emotion.Confidences{emotion.Happy: 0.9},
	}
	st.Apply(&face)
	NewAnnotator().Annotate(view, st)

	// The box edge is green on the annotated copy only.
	if got := view.Mat.GetVecbAt(20, 10); got[1] != 255 {
		t.Errorf("Expected green pixel on annotated copy, got %v", got)
	}
	if got := f.Mat.GetVecbAt(20, 10); got[1] != 0 {
		t.Errorf("Original frame must stay untouched, got %v", got)
	}
}

func TestAnnotateIgnoresEmptyState(t *testing.T) {
	f := newFrame(t, 32, 32)
	defer f.Close()
	NewAnnotator().Annotate(f, pipeline.EmptyState())
	if n := gocv.CountNonZero(f.Mat.Reshape(1, 0)); n != 0 {
		t.Errorf("Expected untouched frame, %d non-zero values", n)
	}
}

func TestWriterRejectsWrongSize(t *testing.T) {
	path := t.TempDir() + "/out.avi"
	w, err := NewWriter(path, "MJPG", 10, image.Pt(64, 48))
	if err != nil {
		t.Skipf("video backend unavailable: %v", err)
	}
	defer w.Close()

	f := newFrame(t, 32, 32)
	defer f.Close()
	if err := w.Write(f); err == nil || !strings.Contains(err.Error(), "writer expects") {
		t.Errorf("Expected size mismatch error, got %v", err)
	}

	ok := newFrame(t, 64, 48)
	defer ok.Close()
	if err := w.Write(ok); err != nil {
		t.Errorf("Write failed: %v", err)
	}
}
