package pipeline

import "github.com/andresmejia3/moodcam/internal/emotion"

// StatisticsLog is the append-only sequence of confidence mappings, one per
// analyzed tick that found a face.
type StatisticsLog struct {
	entries []emotion.Confidences
}

// Append stores a copy of c.
func (l *StatisticsLog) Append(c emotion.Confidences) {
	l.entries = append(l.entries, c.Clone())
}

func (l *StatisticsLog) Len() int { return len(l.entries) }

// Entries returns the log in append order. Callers must not modify it.
func (l *StatisticsLog) Entries() []emotion.Confidences { return l.entries }
