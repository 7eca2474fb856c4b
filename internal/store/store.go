package store

import (
	"context"
	"fmt"
	"time"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection holding recorded sessions.
type Store struct {
	conn *pgx.Conn
}

// Session is one recorded capture session.
type Session struct {
	ID         string
	Source     string
	Skip       int
	CaptureFPS float64
	StartedAt  time.Time
	EndedAt    *time.Time
	StopReason string
	Frames     int
	Analyzed   int
	FacesFound int
	Elapsed    time.Duration
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the necessary tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			skip INT NOT NULL,
			capture_fps DOUBLE PRECISION NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			stop_reason TEXT,
			frames INT NOT NULL DEFAULT 0,
			analyzed_ticks INT NOT NULL DEFAULT 0,
			faces_found INT NOT NULL DEFAULT 0,
			elapsed_ms BIGINT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS emotion_samples (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INT NOT NULL,
			tick INT NOT NULL,
			box INT[] NOT NULL,
			label TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			emotions JSONB NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL,
			UNIQUE (session_id, seq)
		);
		CREATE INDEX IF NOT EXISTS emotion_samples_session_idx ON emotion_samples (session_id, seq);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// CreateSession registers a session before its first frame is captured.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO sessions (id, source, skip, capture_fps, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, sess.Source, sess.Skip, sess.CaptureFPS, sess.StartedAt)
	return err
}

// InsertSample saves one analyzed tick that found a face.
func (s *Store) InsertSample(ctx context.Context, sessionID string, sample types.Sample) error {
	r := sample.Region
	_, err := s.conn.Exec(ctx, `
		INSERT INTO emotion_samples (session_id, seq, tick, box, label, confidence, emotions, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sessionID, sample.Seq, sample.Tick, []int{r.X, r.Y, r.Width, r.Height},
		string(sample.Label), sample.Confidence, sample.Confidences.Strings(), sample.At)
	return err
}

// FinishSession stores the final counters of a session.
func (s *Store) FinishSession(ctx context.Context, sess Session) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE sessions
		SET ended_at = NOW(), stop_reason = $2, frames = $3, analyzed_ticks = $4, faces_found = $5, elapsed_ms = $6
		WHERE id = $1
	`, sess.ID, sess.StopReason, sess.Frames, sess.Analyzed, sess.FacesFound, sess.Elapsed.Milliseconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", sess.ID)
	}
	return nil
}

// ListSessions returns every recorded session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, source, skip, capture_fps, started_at, ended_at, COALESCE(stop_reason, ''),
		       frames, analyzed_ticks, faces_found, elapsed_ms
		FROM sessions
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var elapsedMS int64
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.Skip, &sess.CaptureFPS, &sess.StartedAt, &sess.EndedAt,
			&sess.StopReason, &sess.Frames, &sess.Analyzed, &sess.FacesFound, &elapsedMS); err != nil {
			return nil, err
		}
		sess.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, sess)
	}
	return out, rows.Err()
}

// SessionSamples returns the confidence mappings of a session in capture order.
func (s *Store) SessionSamples(ctx context.Context, sessionID string) ([]emotion.Confidences, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT emotions FROM emotion_samples WHERE session_id = $1 ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []emotion.Confidences
	for rows.Next() {
		var m map[string]float64
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, emotion.FromStrings(m))
	}
	return out, rows.Err()
}

// Reset drops all application tables to clear the database state.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS emotion_samples CASCADE;
		DROP TABLE IF EXISTS sessions CASCADE;
	`)
	return err
}
