package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/rs/zerolog/log"
)

// ErrClassifier marks errors raised by the emotion classifier.
var ErrClassifier = errors.New("classifier failed")

// StopReason explains why a session ended.
type StopReason int

const (
	StopEndOfStream StopReason = iota
	StopQuit
	StopInterrupted
	StopFailed
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end of stream"
	case StopQuit:
		return "quit requested"
	case StopInterrupted:
		return "interrupted"
	case StopFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary describes a finished session.
type Summary struct {
	SessionID    string
	StartedAt    time.Time
	Elapsed      time.Duration
	Frames       int
	Analyzed     int
	FacesFound   int
	VideoFrames  int
	ChartFrames  int
	ChartSkipped int
	Reason       StopReason
	TrendWritten bool
}

// Clean reports whether the session ended without a fatal error.
func (s Summary) Clean() bool { return s.Reason != StopFailed }

// Options wires the collaborators of a Session.
type Options struct {
	ID         string
	Skip       int
	Source     Source
	Classifier Classifier
	Annotator  Annotator
	Display    Display
	Colors     emotion.ColorMap
	Sinks      *Coordinator
	Trend      *TrendReporter
	Progress   Progress
}

// Session is the single capture loop. It owns the scheduler, the held
// detection state, the statistics log and every open sink for the lifetime
// of one capture. It is not safe for concurrent use.
type Session struct {
	id         string
	source     Source
	classifier Classifier
	annotator  Annotator
	display    Display
	colors     emotion.ColorMap
	sinks      *Coordinator
	trend      *TrendReporter
	progress   Progress

	scheduler *Scheduler
	state     DetectionState
}

func NewSession(opts Options) *Session {
	if opts.Sinks.Stats == nil {
		opts.Sinks.Stats = &StatisticsLog{}
	}
	return &Session{
		id:         opts.ID,
		source:     opts.Source,
		classifier: opts.Classifier,
		annotator:  opts.Annotator,
		display:    opts.Display,
		colors:     opts.Colors,
		sinks:      opts.Sinks,
		trend:      opts.Trend,
		progress:   opts.Progress,
		scheduler:  NewScheduler(opts.Skip),
		state:      EmptyState(),
	}
}

// State returns the currently held detection.
func (s *Session) State() DetectionState { return s.state }

// Stats returns the statistics log accumulated so far.
func (s *Session) Stats() *StatisticsLog { return s.sinks.Stats }

// Run pulls frames until the stream ends, the user quits, ctx is cancelled
// or a collaborator fails. Cleanup runs on every one of those paths; only a
// failure produces a non-nil error, and it is returned after cleanup.
func (s *Session) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	sum.SessionID = s.id
	sum.StartedAt = start

	defer func() {
		sum.Elapsed = time.Since(start)
		sum.VideoFrames, sum.ChartFrames, sum.ChartSkipped, _ = s.sinks.Counters()
		if cerr := s.close(&sum); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			sum.Reason = StopFailed
		}
		// Last, so the stored outcome includes cleanup failures
		if rerr := s.sinks.CloseRecorder(context.WithoutCancel(ctx), sum); rerr != nil {
			err = errors.Join(err, rerr)
			sum.Reason = StopFailed
		}
	}()

	for {
		select {
		case <-ctx.Done():
			sum.Reason = StopInterrupted
			return sum, nil
		default:
		}

		frame, rerr := s.source.Read()
		if errors.Is(rerr, io.EOF) {
			sum.Reason = StopEndOfStream
			return sum, nil
		}
		if rerr != nil {
			return sum, fmt.Errorf("failed to read frame: %w", rerr)
		}

		quit, serr := s.step(ctx, frame, &sum)
		if serr != nil {
			if ctx.Err() != nil && (errors.Is(serr, ErrClassifier) || errors.Is(serr, context.Canceled)) {
				// The tick was cut short by the interrupt itself
				log.Debug().Err(serr).Msg("tick aborted by interrupt")
				sum.Reason = StopInterrupted
				return sum, nil
			}
			return sum, serr
		}
		if quit {
			sum.Reason = StopQuit
			return sum, nil
		}
	}
}

// step runs one capture tick: optional analysis, then the display phase.
func (s *Session) step(ctx context.Context, frame Frame, sum *Summary) (bool, error) {
	defer frame.Close()
	sum.Frames++

	// The display works on its own copy so the video frame is annotated once.
	view := frame.Clone()
	defer view.Close()

	if s.scheduler.Tick() {
		sum.Analyzed++
		found, err := s.analyze(ctx, frame)
		if err != nil {
			return false, err
		}
		if found {
			sum.FacesFound++
		}
	}

	if s.state.Active {
		s.annotator.Annotate(view, s.state)
	}
	quit := s.display.Show(view, s.colors.Lookup(s.state.DisplayLabel()))

	if s.progress != nil {
		_ = s.progress.Add(1)
	}
	return quit, nil
}

func (s *Session) analyze(ctx context.Context, frame Frame) (bool, error) {
	tick := s.scheduler.Count()
	faces, err := s.classifier.Detect(frame)
	if err != nil {
		return false, fmt.Errorf("%w on tick %d: %w", ErrClassifier, tick, err)
	}

	face, ok := SelectPrimary(faces)
	if !ok {
		s.state.Clear()
		return false, s.sinks.DispatchEmpty(frame)
	}

	s.state.Apply(&face)
	log.Debug().
		Int("tick", tick).
		Int("faces", len(faces)).
		Str("label", string(s.state.Label)).
		Float64("confidence", s.state.Confidence).
		Msg("frame analyzed")
	return true, s.sinks.Dispatch(ctx, frame, face, s.state, tick)
}

// close releases the capture device, flushes the output sinks, tears down
// the windows and finally reduces the statistics log into the trend chart.
// The recorder is closed separately by Run.
func (s *Session) close(sum *Summary) error {
	var errs []error
	if err := s.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("capture source: %w", err))
	}
	if err := s.sinks.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.display.Close(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	if s.trend != nil {
		written, err := s.trend.Report(s.sinks.Stats.Entries())
		if err != nil {
			errs = append(errs, err)
		}
		sum.TrendWritten = written
	}
	return errors.Join(errs...)
}
