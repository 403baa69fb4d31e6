package handlers

import (
	"net/http"
	"strconv"

	"sawt/internal/ingestion"
	"sawt/internal/models"
	"sawt/internal/storage"

	"github.com/labstack/echo/v4"
)

// AudioHandler handles recording-related HTTP requests
type AudioHandler struct {
	ingester       *ingestion.AudioIngester
	recordingRepo  *storage.RecordingRepository
	transcriptRepo *storage.TranscriptRepository
}

// NewAudioHandler creates a new AudioHandler
func NewAudioHandler(
	ingester *ingestion.AudioIngester,
	recordingRepo *storage.RecordingRepository,
	transcriptRepo *storage.TranscriptRepository,
) *AudioHandler {
	return &AudioHandler{
		ingester:       ingester,
		recordingRepo:  recordingRepo,
		transcriptRepo: transcriptRepo,
	}
}

// Upload handles audio file upload
// POST /api/recordings
func (h *AudioHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open file"})
	}
	defer f.Close()

	priority := models.JobPriorityNormal
	if p := c.FormValue("priority"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			priority = parsed
		}
	}

	result, err := h.ingester.Ingest(ctx, ingestion.IngestOptions{
		Filename: fh.Filename,
		Reader:   f,
		Engine:   c.FormValue("engine"),
		Priority: priority,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"recording_id": result.RecordingID,
		"job_id":       result.JobID,
		"message":      "Transcription started",
	})
}

// List returns the most recent recordings
// GET /api/recordings
func (h *AudioHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	recordings, err := h.recordingRepo.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if recordings == nil {
		recordings = []models.Recording{}
	}

	return c.JSON(http.StatusOK, recordings)
}

// Get returns a recording by id
// GET /api/recordings/:id
func (h *AudioHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	recording, err := h.recordingRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if recording == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "recording not found"})
	}

	return c.JSON(http.StatusOK, recording)
}

// GetTranscript returns the latest transcript for a recording
// GET /api/recordings/:id/transcript
func (h *AudioHandler) GetTranscript(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	recording, err := h.recordingRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if recording == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "recording not found"})
	}

	transcript, err := h.transcriptRepo.GetByRecordingID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if transcript == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not ready"})
	}

	return c.JSON(http.StatusOK, transcript)
}
