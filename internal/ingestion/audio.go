package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sawt/internal/models"
	"sawt/internal/storage"

	"github.com/google/uuid"
)

// AudioIngester stores uploaded recordings and queues transcription jobs
type AudioIngester struct {
	recordingRepo *storage.RecordingRepository
	jobRepo       *storage.JobRepository
	dataDir       string
}

// NewAudioIngester creates a new AudioIngester
func NewAudioIngester(recordingRepo *storage.RecordingRepository, jobRepo *storage.JobRepository, dataDir string) *AudioIngester {
	return &AudioIngester{
		recordingRepo: recordingRepo,
		jobRepo:       jobRepo,
		dataDir:       dataDir,
	}
}

// IngestOptions contains options for audio ingestion
type IngestOptions struct {
	Filename string    // original upload filename
	Reader   io.Reader // WAV data
	Engine   string    // transcription engine (default: moonshine)
	Priority int       // job priority (0-9, lower is higher priority)
}

// IngestResult contains the result of audio ingestion
type IngestResult struct {
	RecordingID string
	JobID       string
}

// Ingest saves the uploaded file, creates a recording record, and
// queues a transcription job for the worker.
func (i *AudioIngester) Ingest(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	if opts.Reader == nil {
		return nil, fmt.Errorf("no audio data provided")
	}
	if !strings.HasSuffix(strings.ToLower(opts.Filename), ".wav") {
		return nil, fmt.Errorf("only WAV uploads are supported, got %q", opts.Filename)
	}

	uploadDir := filepath.Join(i.dataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	recordingID := uuid.New().String()
	path := filepath.Join(uploadDir, recordingID+".wav")

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, opts.Reader); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	recording := &models.Recording{
		ID:         recordingID,
		Filename:   opts.Filename,
		Path:       path,
		SampleRate: 16000,
	}
	if err := i.recordingRepo.Create(ctx, recording); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	engine := opts.Engine
	if engine == "" {
		engine = "moonshine"
	}
	job := &models.TranscriptionJob{
		RecordingID: recordingID,
		Type:        models.JobTypeTranscribe,
		Engine:      engine,
		Priority:    opts.Priority,
	}
	if err := i.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}

	return &IngestResult{RecordingID: recordingID, JobID: job.ID}, nil
}
