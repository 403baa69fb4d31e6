package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sawt/internal/asr"
	"sawt/internal/audio"
	"sawt/internal/handlers"
	"sawt/internal/ingestion"
	"sawt/internal/models"
	"sawt/internal/storage"
	"sawt/internal/version"
	"sawt/internal/worker"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("SAWT_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	// A model-load failure fails startup as a whole; there is no
	// degraded mode.
	config, err := asr.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load model config: %v", err)
	}
	engine, err := asr.NewEngine(config)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer engine.Close()

	db, err := storage.Open(filepath.Join(dataDir, "sawt.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	recordingRepo := storage.NewRecordingRepository(db)
	jobRepo := storage.NewJobRepository(db)
	transcriptRepo := storage.NewTranscriptRepository(db)
	ingester := ingestion.NewAudioIngester(recordingRepo, jobRepo, dataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.NewWorker(jobRepo)
	w.RegisterHandler(models.JobTypeTranscribe, func(ctx context.Context, job *models.TranscriptionJob) error {
		recording, err := recordingRepo.GetByID(ctx, job.RecordingID)
		if err != nil {
			return fmt.Errorf("failed to load recording: %w", err)
		}
		if recording == nil {
			return fmt.Errorf("recording %s not found", job.RecordingID)
		}

		samples, sampleRate, err := audio.ReadWAV(recording.Path)
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}

		result, err := engine.Transcribe(ctx, samples, sampleRate)
		if err != nil {
			return err
		}

		return transcriptRepo.Create(ctx, &models.Transcript{
			JobID:       job.ID,
			RecordingID: recording.ID,
			Text:        result.Text,
			TokenCount:  result.Tokens,
			Engine:      job.Engine,
			DurationSec: result.Duration,
		})
	})
	w.Start(ctx)
	defer w.Stop()

	audioHandler := handlers.NewAudioHandler(ingester, recordingRepo, transcriptRepo)
	jobHandler := handlers.NewJobHandler(jobRepo, transcriptRepo)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/api/recordings", audioHandler.Upload)
	e.GET("/api/recordings", audioHandler.List)
	e.GET("/api/recordings/:id", audioHandler.Get)
	e.GET("/api/recordings/:id/transcript", audioHandler.GetTranscript)
	e.GET("/api/jobs/:id", jobHandler.Get)
	e.GET("/api/jobs/:id/transcript", jobHandler.GetTranscript)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"version": version.Version,
			"engine":  config.Engine,
		})
	})

	go func() {
		<-ctx.Done()
		e.Close()
	}()

	log.Printf("Starting Sawt v%s on port %s (engine: %s)", version.Version, port, config.Engine)
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Println(err)
	}
}
