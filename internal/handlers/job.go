package handlers

import (
	"net/http"

	"sawt/internal/storage"

	"github.com/labstack/echo/v4"
)

// JobHandler handles job status requests
type JobHandler struct {
	jobRepo        *storage.JobRepository
	transcriptRepo *storage.TranscriptRepository
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobRepo *storage.JobRepository, transcriptRepo *storage.TranscriptRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, transcriptRepo: transcriptRepo}
}

// Get returns a job by id
// GET /api/jobs/:id
func (h *JobHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.jobRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, job)
}

// GetTranscript returns the transcript produced by a job
// GET /api/jobs/:id/transcript
func (h *JobHandler) GetTranscript(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.jobRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	transcript, err := h.transcriptRepo.GetByJobID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if transcript == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not ready"})
	}

	return c.JSON(http.StatusOK, transcript)
}
