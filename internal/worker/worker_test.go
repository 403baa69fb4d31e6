package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sawt/internal/models"
	"sawt/internal/storage"
)

func setupWorker(t *testing.T) (*Worker, *storage.JobRepository, string) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "sawt.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := &models.Recording{Filename: "a.wav", Path: "/tmp/a.wav", SampleRate: 16000}
	if err := storage.NewRecordingRepository(db).Create(context.Background(), rec); err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}

	jobRepo := storage.NewJobRepository(db)
	w := NewWorker(jobRepo)
	w.SetInterval(10 * time.Millisecond)
	return w, jobRepo, rec.ID
}

func waitForStatus(t *testing.T, repo *storage.JobRepository, id, status string) *models.TranscriptionJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job != nil && job.Status == status {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, status)
	return nil
}

func TestWorkerProcessesJob(t *testing.T) {
	w, jobRepo, recordingID := setupWorker(t)

	handled := make(chan string, 1)
	w.RegisterHandler(models.JobTypeTranscribe, func(ctx context.Context, job *models.TranscriptionJob) error {
		handled <- job.RecordingID
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	job, err := w.SubmitJob(ctx, models.JobTypeTranscribe, recordingID, "moonshine", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	select {
	case got := <-handled:
		if got != recordingID {
			t.Errorf("handler saw recording %s, want %s", got, recordingID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("handler was never invoked")
	}

	waitForStatus(t, jobRepo, job.ID, models.JobStatusCompleted)
}

func TestWorkerRecordsFailure(t *testing.T) {
	w, jobRepo, recordingID := setupWorker(t)

	w.RegisterHandler(models.JobTypeTranscribe, func(ctx context.Context, job *models.TranscriptionJob) error {
		return errors.New("decoder invocation failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	job, err := w.SubmitJob(ctx, models.JobTypeTranscribe, recordingID, "moonshine", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	failed := waitForStatus(t, jobRepo, job.ID, models.JobStatusFailed)
	if failed.Error != "decoder invocation failed" {
		t.Errorf("Error = %q", failed.Error)
	}
}

func TestWorkerUnknownJobType(t *testing.T) {
	w, jobRepo, recordingID := setupWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	job, err := w.SubmitJob(ctx, "summarize", recordingID, "moonshine", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	waitForStatus(t, jobRepo, job.ID, models.JobStatusFailed)
}
