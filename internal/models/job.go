package models

import "time"

// TranscriptionJob is an asynchronous processing task for one recording.
type TranscriptionJob struct {
	ID          string     `json:"id"`
	RecordingID string     `json:"recording_id"`
	Type        string     `json:"type"`
	Engine      string     `json:"engine"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Job types
const (
	JobTypeTranscribe = "transcribe"
)

// Job statuses
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job priorities
const (
	JobPriorityImmediate = 0 // interactive requests
	JobPriorityNormal    = 5 // uploads
	JobPriorityBatch     = 9 // bulk re-transcription
)
