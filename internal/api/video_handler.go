package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/elvispreakerebi/jotta-backend/internal/api/shared"
	"github.com/elvispreakerebi/jotta-backend/internal/service"
)

// VideoHandler handles video job HTTP requests.
type VideoHandler struct {
	jobService service.VideoJobService
	validator  *validator.Validate
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(jobService service.VideoJobService) *VideoHandler {
	return &VideoHandler{
		jobService: jobService,
		validator:  validator.New(),
	}
}

// SubmitVideo handles POST /api/videos requests. It creates a video job
// and enqueues the flashcard generation pipeline, returning 202 Accepted
// since processing happens asynchronously.
func (h *VideoHandler) SubmitVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitVideoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	job, err := h.jobService.SubmitVideo(r.Context(), userID, req.VideoID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitVideoResponse{
		Message: "video accepted for flashcard generation",
		Job:     videoJobToResponse(job),
	})
}

// ListVideoJobs handles GET /api/videos requests. It returns all the
// authenticated user's jobs, newest first.
func (h *VideoHandler) ListVideoJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	jobs, err := h.jobService.ListVideoJobs(r.Context(), userID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, videoJobsToResponse(jobs))
}

// SearchVideoJobs handles GET /api/videos/search?q= requests. It returns
// the user's jobs whose title contains the query string.
func (h *VideoHandler) SearchVideoJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	jobs, err := h.jobService.SearchVideoJobs(r.Context(), userID, query)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, videoJobsToResponse(jobs))
}

// GetVideoJob handles GET /api/videos/{videoID} requests.
func (h *VideoHandler) GetVideoJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Video ID is required")
		return
	}

	job, err := h.jobService.GetVideoJob(r.Context(), userID, videoID)
	if err != nil {
		if errors.Is(err, service.ErrVideoJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Video job not found")
			return
		}
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, videoJobToResponse(job))
}

// DeleteVideoJob handles DELETE /api/videos/{videoID} requests.
func (h *VideoHandler) DeleteVideoJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Video ID is required")
		return
	}

	if err := h.jobService.DeleteVideoJob(r.Context(), userID, videoID); err != nil {
		if errors.Is(err, service.ErrVideoJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Video job not found")
			return
		}
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context. The user ID is placed there by the auth middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
