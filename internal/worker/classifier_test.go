package worker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/types"
)

type jpegFrame []byte

func (f jpegFrame) Clone() pipeline.Frame   { return f }
func (f jpegFrame) Encode() ([]byte, error) { return f, nil }
func (f jpegFrame) Close() error            { return nil }

func TestClassifierDetect(t *testing.T) {
	stdinMock := &MockCloser{Buffer: new(bytes.Buffer)}
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	writeFrame(t, dataPipeMock, types.WorkerResponse{
		Faces: []types.FaceResult{{Box: []int{1, 2, 3, 4}, Emotions: map[string]float64{"fear": 1}}},
	})

	c := Classifier{Worker: &PythonWorker{ID: 7, Stdin: stdinMock, DataPipe: dataPipeMock}}
	faces, err := c.Detect(jpegFrame{0xFF, 0xD8, 0xFF, 0xD9})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(faces) != 1 || faces[0].Region.Area() != 12 {
		t.Errorf("unexpected faces %+v", faces)
	}
	if !bytes.HasSuffix(stdinMock.Bytes(), []byte{0xFF, 0xD8, 0xFF, 0xD9}) {
		t.Error("encoded frame was not forwarded to the worker")
	}
}

func TestClassifierDetectWrapsWorkerID(t *testing.T) {
	dataPipeMock := &MockCloser{Buffer: new(bytes.Buffer)}
	writeFrame(t, dataPipeMock, types.WorkerResponse{Error: "mtcnn failed"})

	c := Classifier{Worker: &PythonWorker{ID: 3, Stdin: &MockCloser{Buffer: new(bytes.Buffer)}, DataPipe: dataPipeMock}}
	_, err := c.Detect(jpegFrame("x"))
	if err == nil || !strings.HasPrefix(err.Error(), "worker 3:") {
		t.Errorf("expected error prefixed with worker id, got %v", err)
	}
}
