package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("moodcam_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Initialize Store (runs migrations)
	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	// --- Test Scenarios ---

	started := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.CreateSession(ctx, Session{ID: "sess-1", Source: "0", Skip: 4, CaptureFPS: 30, StartedAt: started}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	rec := &SessionRecorder{Store: s, SessionID: "sess-1"}
	samples := []emotion.Confidences{
		{emotion.Happy: 0.9, emotion.Neutral: 0.1},
		{emotion.Sad: 0.6, emotion.Happy: 0.4},
	}
	for i, conf := range samples {
		label, score := conf.Dominant()
		err := rec.Record(ctx, types.Sample{
			Seq:         i,
			Tick:        i * 4,
			Region:      types.Region{X: 1, Y: 2, Width: 30, Height: 40},
			Label:       label,
			Confidence:  score,
			Confidences: conf,
			At:          started.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	// Sequence numbers are unique per session.
	if err := rec.Record(ctx, types.Sample{Seq: 0, Label: emotion.Happy, Confidences: samples[0], At: started}); err == nil {
		t.Error("Expected duplicate seq to be rejected")
	}

	err = rec.Close(ctx, pipeline.Summary{
		Reason:     pipeline.StopEndOfStream,
		Frames:     8,
		Analyzed:   2,
		FacesFound: 2,
		Elapsed:    1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.Frames != 8 || got.Analyzed != 2 || got.FacesFound != 2 {
		t.Errorf("Unexpected counters: %+v", got)
	}
	if got.StopReason != pipeline.StopEndOfStream.String() {
		t.Errorf("Expected stop reason %q, got %q", pipeline.StopEndOfStream.String(), got.StopReason)
	}
	if got.EndedAt == nil {
		t.Error("Expected ended_at to be set")
	}
	if got.Elapsed != 1500*time.Millisecond {
		t.Errorf("Expected elapsed 1.5s, got %s", got.Elapsed)
	}

	loaded, err := s.SessionSamples(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionSamples failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(loaded))
	}
	if math.Abs(loaded[1].Get(emotion.Sad)-0.6) > 1e-9 {
		t.Errorf("Expected sad ~0.6 in second sample, got %f", loaded[1].Get(emotion.Sad))
	}

	if err := s.FinishSession(ctx, Session{ID: "missing"}); err == nil {
		t.Error("Expected error finishing an unknown session")
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := s.ListSessions(ctx); err == nil {
		t.Error("Expected ListSessions to fail after Reset dropped the tables")
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
