package models

import "time"

// Recording is a stored audio capture awaiting or holding transcription.
type Recording struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	SampleRate  int       `json:"sample_rate"`
	DurationSec float64   `json:"duration_sec"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transcript is the finished text for one transcription job.
type Transcript struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	RecordingID string    `json:"recording_id"`
	Text        string    `json:"text"`
	TokenCount  int       `json:"token_count"`
	Engine      string    `json:"engine"`
	DurationSec float64   `json:"duration_sec"` // processing time
	CreatedAt   time.Time `json:"created_at"`
}
