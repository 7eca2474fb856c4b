package store

import (
	"context"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/types"
)

// SessionRecorder streams the samples of one session into the store.
type SessionRecorder struct {
	Store     *Store
	SessionID string
}

func (r *SessionRecorder) Record(ctx context.Context, s types.Sample) error {
	return r.Store.InsertSample(ctx, r.SessionID, s)
}

// Close stores the final counters. The connection itself stays open; it
// belongs to the command.
func (r *SessionRecorder) Close(ctx context.Context, sum pipeline.Summary) error {
	return r.Store.FinishSession(ctx, Session{
		ID:         r.SessionID,
		StopReason: sum.Reason.String(),
		Frames:     sum.Frames,
		Analyzed:   sum.Analyzed,
		FacesFound: sum.FacesFound,
		Elapsed:    sum.Elapsed,
	})
}
