package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"sawt/internal/models"
)

// JobRepository is the data access layer for transcription jobs.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job, filling in defaults.
func (r *JobRepository) Create(ctx context.Context, job *models.TranscriptionJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if job.Type == "" {
		job.Type = models.JobTypeTranscribe
	}
	job.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, recording_id, type, engine, status, priority, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.RecordingID, job.Type, job.Engine, job.Status, job.Priority, job.Error, job.CreatedAt)
	return err
}

// GetByID returns a job by id, or nil if it does not exist.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.TranscriptionJob, error) {
	return r.scanJob(r.db.QueryRowContext(ctx,
		`SELECT id, recording_id, type, engine, status, priority, error, created_at, started_at, completed_at
		 FROM jobs WHERE id = ?`, id))
}

// GetNextQueued returns the next queued job by priority, or nil when
// the queue is empty.
func (r *JobRepository) GetNextQueued(ctx context.Context) (*models.TranscriptionJob, error) {
	return r.scanJob(r.db.QueryRowContext(ctx,
		`SELECT id, recording_id, type, engine, status, priority, error, created_at, started_at, completed_at
		 FROM jobs WHERE status = ? ORDER BY priority ASC, created_at ASC LIMIT 1`,
		models.JobStatusQueued))
}

// Start marks a job as running.
func (r *JobRepository) Start(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, started_at = ? WHERE id = ?`,
		models.JobStatusRunning, now, id)
	return err
}

// Complete marks a job as completed.
func (r *JobRepository) Complete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, completed_at = ? WHERE id = ?`,
		models.JobStatusCompleted, now, id)
	return err
}

// Fail marks a job as failed with an error message.
func (r *JobRepository) Fail(ctx context.Context, id string, message string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		models.JobStatusFailed, message, now, id)
	return err
}

func (r *JobRepository) scanJob(row *sql.Row) (*models.TranscriptionJob, error) {
	var job models.TranscriptionJob
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&job.ID, &job.RecordingID, &job.Type, &job.Engine, &job.Status,
		&job.Priority, &job.Error, &job.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}
