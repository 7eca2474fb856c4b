package worker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
	"github.com/andresmejia3/moodcam/internal/utils" // Using the SafeCommand wrapper
	"github.com/vmihailenco/msgpack/v5"
)

// maxResponseSize guards against a corrupted length header.
const maxResponseSize = 16 * 1024 * 1024

// ErrTimeout is returned when the worker does not answer within ReadTimeout.
var ErrTimeout = errors.New("python worker timed out")

// Config controls how the Python emotion worker is launched.
type Config struct {
	Python      string
	Script      string
	MTCNN       bool
	ReadTimeout time.Duration
}

// PythonWorker owns one FER subprocess. Frames go in on stdin, replies come
// back on a dedicated pipe so library noise on stdout cannot corrupt them.
type PythonWorker struct {
	ID          int
	Cmd         *utils.SafeCommand
	Stdin       io.WriteCloser
	DataPipe    io.ReadCloser
	ReadTimeout time.Duration

	closed bool
}

func NewPythonWorker(ctx context.Context, id int, cfg Config) (*PythonWorker, error) {
	python := cfg.Python
	if python == "" {
		python = "python3"
	}
	args := []string{"-u", cfg.Script}
	if cfg.MTCNN {
		args = append(args, "--mtcnn")
	}
	py := utils.NewSafeCommand(ctx, python, args...)
	utils.Detach(py)

	// Create a side-channel pipe (FD 3) for clean data transfer
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	// Pass the write-end to the child process. It will appear as FD 3.
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Close the write-end in the parent so only the child holds it
	w.Close()

	return &PythonWorker{
		ID:          id,
		Cmd:         py,
		Stdin:       stdin,
		DataPipe:    r,
		ReadTimeout: cfg.ReadTimeout,
	}, nil
}

// Communicate sends one length-prefixed message and reads one back.
// Protocol: [uint32 big-endian length][payload] in both directions.
func (w *PythonWorker) Communicate(data []byte) ([]byte, error) {
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	if _, err := w.Stdin.Write(data); err != nil {
		return nil, err
	}

	if w.ReadTimeout <= 0 {
		return w.readResponse()
	}

	type reply struct {
		body []byte
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		body, err := w.readResponse()
		done <- reply{body, err}
	}()

	select {
	case r := <-done:
		return r.body, r.err
	case <-time.After(w.ReadTimeout):
		return nil, fmt.Errorf("%w after %s", ErrTimeout, w.ReadTimeout)
	}
}

func (w *PythonWorker) readResponse() ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // This is where we catch an import crash in the child
	}

	respLen := binary.BigEndian.Uint32(header)
	if respLen > maxResponseSize {
		return nil, fmt.Errorf("response length %d exceeds limit", respLen)
	}
	respBody := make([]byte, respLen)
	_, err := io.ReadFull(w.DataPipe, respBody)
	return respBody, err
}

// ProcessFrame classifies one JPEG-encoded frame.
func (w *PythonWorker) ProcessFrame(jpeg []byte) ([]types.DetectedFace, error) {
	resp, err := w.Communicate(jpeg)
	if err != nil {
		return nil, err
	}

	var envelope types.WorkerResponse
	if err := msgpack.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("malformed worker response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("python worker error: %s", envelope.Error)
	}

	faces := make([]types.DetectedFace, 0, len(envelope.Faces))
	for i, f := range envelope.Faces {
		if len(f.Box) != 4 {
			return nil, fmt.Errorf("face %d: expected 4 box values, got %d", i, len(f.Box))
		}
		faces = append(faces, types.DetectedFace{
			Region: types.Region{
				X:      f.Box[0],
				Y:      f.Box[1],
				Width:  f.Box[2],
				Height: f.Box[3],
			},
			Confidences: emotion.FromStrings(f.Emotions),
		})
	}
	return faces, nil
}

// Close ends the worker by closing its stdin and waits for it to exit. It is
// safe to call more than once.
func (w *PythonWorker) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd != nil {
		w.Cmd.Wait()
	}
}
