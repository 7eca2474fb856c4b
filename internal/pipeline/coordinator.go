package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresmejia3/moodcam/internal/types"
	"github.com/rs/zerolog/log"
)

// Coordinator fans one analyzed tick out to every sink so that the
// statistics log, the annotated video and the chart animation advance in
// lockstep with the detection cadence.
type Coordinator struct {
	Stats     *StatisticsLog
	Annotator Annotator
	Video     VideoSink
	Chart     ChartRenderer
	Animation AnimationSink

	// Optional sinks.
	Recorder  Recorder
	Publisher Publisher

	// RecordEmptyTicks writes the raw frame to the video on analyzed ticks
	// that found no face, keeping one video frame per analyzed tick.
	RecordEmptyTicks bool

	chartFrames  int
	chartSkipped int
	videoFrames  int
	publishFails int
	now          func() time.Time
}

// Dispatch handles an analyzed tick whose state is Active. frame is the raw
// capture for this tick and is annotated in place.
func (c *Coordinator) Dispatch(ctx context.Context, frame Frame, face types.DetectedFace, st DetectionState, tick int) error {
	c.Stats.Append(face.Confidences)

	c.Annotator.Annotate(frame, st)
	if err := c.Video.Write(frame); err != nil {
		return fmt.Errorf("failed to write video frame: %w", err)
	}
	c.videoFrames++

	capture := c.Chart.Render(face.Confidences)
	if capture.Skipped() {
		c.chartSkipped++
		log.Warn().Int("tick", tick).Str("reason", capture.SkipReason).Msg("chart capture skipped")
	} else if err := c.Animation.Append(capture.Image); err != nil {
		return fmt.Errorf("failed to append chart frame: %w", err)
	} else {
		c.chartFrames++
	}

	sample := types.Sample{
		Seq:         c.Stats.Len(),
		Tick:        tick,
		Region:      st.Region,
		Label:       st.Label,
		Confidence:  st.Confidence,
		Confidences: face.Confidences.Clone(),
		At:          c.clock(),
	}
	if c.Recorder != nil {
		if err := c.Recorder.Record(ctx, sample); err != nil {
			return fmt.Errorf("failed to record sample: %w", err)
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Publish(sample); err != nil {
			c.publishFails++
			log.Warn().Err(err).Int("tick", tick).Msg("sample publish failed")
		}
	}
	return nil
}

// DispatchEmpty handles an analyzed tick that found no face. Nothing is
// logged or charted; the raw frame reaches the video only when
// RecordEmptyTicks is set.
func (c *Coordinator) DispatchEmpty(frame Frame) error {
	if !c.RecordEmptyTicks {
		return nil
	}
	if err := c.Video.Write(frame); err != nil {
		return fmt.Errorf("failed to write video frame: %w", err)
	}
	c.videoFrames++
	return nil
}

// Close flushes and releases the video, animation and publisher sinks.
// All of them are closed even when some fail. The recorder is left open so
// it can store the final outcome, see CloseRecorder.
func (c *Coordinator) Close() error {
	var errs []error
	if c.Video != nil {
		if err := c.Video.Close(); err != nil {
			errs = append(errs, fmt.Errorf("video sink: %w", err))
		}
	}
	if c.Animation != nil {
		if err := c.Animation.Close(); err != nil {
			errs = append(errs, fmt.Errorf("chart animation: %w", err))
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CloseRecorder hands the settled summary to the recorder.
func (c *Coordinator) CloseRecorder(ctx context.Context, sum Summary) error {
	if c.Recorder == nil {
		return nil
	}
	if err := c.Recorder.Close(ctx, sum); err != nil {
		return fmt.Errorf("recorder: %w", err)
	}
	return nil
}

// Counters reports how many frames each sink accepted.
func (c *Coordinator) Counters() (video, chartFrames, chartSkipped, publishFails int) {
	return c.videoFrames, c.chartFrames, c.chartSkipped, c.publishFails
}

func (c *Coordinator) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
