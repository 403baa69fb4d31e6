package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"sawt/internal/models"
)

// TranscriptRepository is the data access layer for transcripts.
type TranscriptRepository struct {
	db *DB
}

// NewTranscriptRepository creates a new TranscriptRepository.
func NewTranscriptRepository(db *DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Create inserts a finished transcript.
func (r *TranscriptRepository) Create(ctx context.Context, t *models.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, job_id, recording_id, text, token_count, engine, duration_sec, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.JobID, t.RecordingID, t.Text, t.TokenCount, t.Engine, t.DurationSec, t.CreatedAt)
	return err
}

// GetByRecordingID returns the latest transcript for a recording, or
// nil if none exists yet.
func (r *TranscriptRepository) GetByRecordingID(ctx context.Context, recordingID string) (*models.Transcript, error) {
	return r.scanTranscript(r.db.QueryRowContext(ctx,
		`SELECT id, job_id, recording_id, text, token_count, engine, duration_sec, created_at
		 FROM transcripts WHERE recording_id = ? ORDER BY created_at DESC LIMIT 1`, recordingID))
}

// GetByJobID returns the transcript produced by a job, or nil.
func (r *TranscriptRepository) GetByJobID(ctx context.Context, jobID string) (*models.Transcript, error) {
	return r.scanTranscript(r.db.QueryRowContext(ctx,
		`SELECT id, job_id, recording_id, text, token_count, engine, duration_sec, created_at
		 FROM transcripts WHERE job_id = ?`, jobID))
}

func (r *TranscriptRepository) scanTranscript(row *sql.Row) (*models.Transcript, error) {
	var t models.Transcript
	err := row.Scan(&t.ID, &t.JobID, &t.RecordingID, &t.Text, &t.TokenCount, &t.Engine, &t.DurationSec, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
