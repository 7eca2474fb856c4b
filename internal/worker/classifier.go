package worker

import (
	"fmt"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/types"
)

// Classifier adapts a PythonWorker to the pipeline's blocking Detect call.
type Classifier struct {
	Worker *PythonWorker
}

func (c Classifier) Detect(f pipeline.Frame) ([]types.DetectedFace, error) {
	data, err := f.Encode()
	if err != nil {
		return nil, err
	}
	faces, err := c.Worker.ProcessFrame(data)
	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", c.Worker.ID, err)
	}
	return faces, nil
}
