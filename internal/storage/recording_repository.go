package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"sawt/internal/models"
)

// RecordingRepository is the data access layer for recordings.
type RecordingRepository struct {
	db *DB
}

// NewRecordingRepository creates a new RecordingRepository.
func NewRecordingRepository(db *DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Create inserts a new recording, filling in the id and timestamp.
func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recordings (id, filename, path, sample_rate, duration_sec, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Path, rec.SampleRate, rec.DurationSec, rec.CreatedAt)
	return err
}

// GetByID returns a recording by id, or nil if it does not exist.
func (r *RecordingRepository) GetByID(ctx context.Context, id string) (*models.Recording, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, path, sample_rate, duration_sec, created_at
		 FROM recordings WHERE id = ?`, id)

	var rec models.Recording
	err := row.Scan(&rec.ID, &rec.Filename, &rec.Path, &rec.SampleRate, &rec.DurationSec, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecent returns the most recently created recordings.
func (r *RecordingRepository) ListRecent(ctx context.Context, limit int) ([]models.Recording, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, path, sample_rate, duration_sec, created_at
		 FROM recordings ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []models.Recording
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Path, &rec.SampleRate, &rec.DurationSec, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}
