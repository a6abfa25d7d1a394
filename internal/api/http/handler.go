package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mkuznetsov/videogen/internal/domain"
	errpkg "github.com/mkuznetsov/videogen/internal/errors"
	"github.com/mkuznetsov/videogen/internal/metrics"
)

// GenerationService starts pipeline runs for validated requests.
type GenerationService interface {
	Submit(req domain.GenerateRequest) (string, error)
}

// TaskReader returns poller snapshots of task state.
type TaskReader interface {
	Get(id string) (domain.Task, error)
}

// ArtifactResolver locates stored videos by artifact identifier.
type ArtifactResolver interface {
	Resolve(artifactID string) (string, error)
}

// VideoHandler handles HTTP requests for video generation.
type VideoHandler struct {
	service   GenerationService
	tasks     TaskReader
	artifacts ArtifactResolver
	validator *validator.Validate
	logger    *slog.Logger
}

// NewVideoHandler creates a VideoHandler with the provided collaborators.
func NewVideoHandler(service GenerationService, tasks TaskReader, artifacts ArtifactResolver, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		service:   service,
		tasks:     tasks,
		artifacts: artifacts,
		validator: validator.New(),
		logger:    logger,
	}
}

// Generate handles POST /api/generate.
func (h *VideoHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	taskID, err := h.service.Submit(req)
	if err != nil {
		if errors.Is(err, errpkg.ErrEmptyScript) || errors.Is(err, errpkg.ErrScriptTooLong) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to start generation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.GenerateResponse{
		TaskID:  taskID,
		Status:  "started",
		Message: "Video generation started",
	})
}

// Status handles GET /api/status/{taskID}.
func (h *VideoHandler) Status(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := h.tasks.Get(taskID)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	resp := domain.StatusResponse{
		TaskID:   task.ID,
		Status:   task.State,
		Progress: task.Progress,
		Message:  task.Message,
		VideoID:  task.ArtifactID,
	}
	if task.ArtifactID != "" {
		resp.VideoURL = "/api/videos/" + task.ArtifactID
	}

	writeJSON(w, http.StatusOK, resp)
}

// Video handles GET /api/videos/{videoID}, streaming the rendered file.
func (h *VideoHandler) Video(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	path, err := h.artifacts.Resolve(videoID)
	if err != nil {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}

	metrics.VideosServed.Inc()
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="ai-video-`+videoID+`.mp4"`)
	http.ServeFile(w, r, path)
}

// Styles handles GET /api/styles.
func (h *VideoHandler) Styles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Styles())
}

// Voices handles GET /api/voices.
func (h *VideoHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Voices())
}

// Avatars handles GET /api/avatars.
func (h *VideoHandler) Avatars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Avatars())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
