package pipeline

import "time"

// Scheduler decides which capture ticks are analyzed. The counter starts at
// 1 on the first frame, and a tick is analyzed when counter mod (skip+1) == 0.
type Scheduler struct {
	skip  int
	count int
}

// NewScheduler returns a scheduler that skips skip frames between analyses.
// Negative values are treated as 0.
func NewScheduler(skip int) *Scheduler {
	if skip < 0 {
		skip = 0
	}
	return &Scheduler{skip: skip}
}

// Tick advances the counter and reports whether this frame is analyzed.
func (s *Scheduler) Tick() bool {
	s.count++
	return s.count%(s.skip+1) == 0
}

// Count is the number of ticks seen so far.
func (s *Scheduler) Count() int { return s.count }

// Interval is the number of capture ticks per analyzed tick.
func (s *Scheduler) Interval() int { return s.skip + 1 }

// OutputFPS is the annotated video frame rate: one output frame per analyzed tick.
func OutputFPS(captureFPS float64, skip int) float64 {
	return captureFPS / float64(skip+1)
}

// FrameDuration is the wall-clock time covered by one analyzed tick.
func FrameDuration(captureFPS float64, skip int) time.Duration {
	if captureFPS <= 0 {
		return 0
	}
	return time.Duration(float64(skip+1) / captureFPS * float64(time.Second))
}
