package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sawt/internal/models"
	"sawt/internal/storage"
)

func setupIngester(t *testing.T) (*AudioIngester, *storage.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "sawt.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ingester := NewAudioIngester(
		storage.NewRecordingRepository(db),
		storage.NewJobRepository(db),
		dir,
	)
	return ingester, db, dir
}

func TestIngest(t *testing.T) {
	ingester, db, dir := setupIngester(t)
	ctx := context.Background()

	result, err := ingester.Ingest(ctx, IngestOptions{
		Filename: "marhaba.wav",
		Reader:   strings.NewReader("RIFF fake wav payload"),
		Priority: models.JobPriorityNormal,
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// File lands under uploads/
	saved := filepath.Join(dir, "uploads", result.RecordingID+".wav")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("uploaded file not saved: %v", err)
	}

	rec, err := storage.NewRecordingRepository(db).GetByID(ctx, result.RecordingID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec == nil || rec.Filename != "marhaba.wav" {
		t.Errorf("recording = %+v", rec)
	}

	job, err := storage.NewJobRepository(db).GetByID(ctx, result.JobID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job == nil {
		t.Fatal("job not created")
	}
	if job.Engine != "moonshine" {
		t.Errorf("default engine = %q, want moonshine", job.Engine)
	}
	if job.Status != models.JobStatusQueued {
		t.Errorf("status = %q, want queued", job.Status)
	}
}

func TestIngestRejectsNonWAV(t *testing.T) {
	ingester, _, _ := setupIngester(t)
	_, err := ingester.Ingest(context.Background(), IngestOptions{
		Filename: "voice.ogg",
		Reader:   strings.NewReader("ogg data"),
	})
	if err == nil {
		t.Fatal("expected error for non-WAV upload")
	}
}

func TestIngestRequiresReader(t *testing.T) {
	ingester, _, _ := setupIngester(t)
	_, err := ingester.Ingest(context.Background(), IngestOptions{Filename: "a.wav"})
	if err == nil {
		t.Fatal("expected error for missing reader")
	}
}
