package pipeline

import (
	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
)

// DetectionState is the result of the most recent analyzed tick. It is only
// written on analyzed ticks and read by every display tick in between.
// The zero value is the Empty state.
type DetectionState struct {
	Active     bool
	Region     types.Region
	Label      emotion.Label
	Confidence float64
	Text       string
}

// EmptyState is the state held when no face is tracked.
func EmptyState() DetectionState {
	return DetectionState{Label: emotion.None}
}

// Apply transitions the state from the primary face of an analyzed tick.
// A nil face means the classifier found nobody.
func (s *DetectionState) Apply(face *types.DetectedFace) {
	if face == nil {
		s.Clear()
		return
	}
	label, score := face.Confidences.Dominant()
	*s = DetectionState{
		Active:     true,
		Region:     face.Region,
		Label:      label,
		Confidence: score,
		Text:       emotion.FormatAnnotation(label, score),
	}
}

// Clear moves to the Empty state.
func (s *DetectionState) Clear() {
	*s = EmptyState()
}

// DisplayLabel is the label used for the color panel.
func (s DetectionState) DisplayLabel() emotion.Label {
	if !s.Active {
		return emotion.None
	}
	return s.Label
}
