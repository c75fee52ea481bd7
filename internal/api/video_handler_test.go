package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvispreakerebi/jotta-backend/internal/api"
	"github.com/elvispreakerebi/jotta-backend/internal/api/shared"
	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/service"
)

// stubJobService is a configurable VideoJobService for handler tests.
type stubJobService struct {
	submitJob  *domain.VideoJob
	submitErr  error
	getJob     *domain.VideoJob
	getErr     error
	listJobs   []*domain.VideoJob
	listErr    error
	searchJobs []*domain.VideoJob
	searchErr  error
	deleteErr  error
}

func (s *stubJobService) SubmitVideo(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error) {
	return s.submitJob, s.submitErr
}

func (s *stubJobService) GetVideoJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error) {
	return s.getJob, s.getErr
}

func (s *stubJobService) ListVideoJobs(ctx context.Context, ownerID uuid.UUID) ([]*domain.VideoJob, error) {
	return s.listJobs, s.listErr
}

func (s *stubJobService) SearchVideoJobs(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.VideoJob, error) {
	return s.searchJobs, s.searchErr
}

func (s *stubJobService) DeleteVideoJob(ctx context.Context, ownerID uuid.UUID, videoID string) error {
	return s.deleteErr
}

func (s *stubJobService) GetJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error) {
	return s.getJob, s.getErr
}

func (s *stubJobService) MarkStage(ctx context.Context, jobID uuid.UUID, status domain.VideoJobStatus) error {
	return nil
}

func (s *stubJobService) CompleteJob(ctx context.Context, job *domain.VideoJob) error {
	return nil
}

func (s *stubJobService) FailJob(ctx context.Context, jobID uuid.UUID, detail string) error {
	return nil
}

func newTestJob(t *testing.T, ownerID uuid.UUID) *domain.VideoJob {
	t.Helper()
	job, err := domain.NewVideoJob(ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	return job
}

// newTestRouter mounts the handler behind a stub auth context carrying
// the given user ID.
func newTestRouter(handler *api.VideoHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/videos", handler.SubmitVideo)
	r.Get("/api/videos", handler.ListVideoJobs)
	r.Get("/api/videos/search", handler.SearchVideoJobs)
	r.Get("/api/videos/{videoID}", handler.GetVideoJob)
	r.Delete("/api/videos/{videoID}", handler.DeleteVideoJob)
	return r
}

func TestSubmitVideoAccepted(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	job := newTestJob(t, ownerID)
	handler := api.NewVideoHandler(&stubJobService{submitJob: job})
	router := newTestRouter(handler, ownerID)

	body := bytes.NewBufferString(`{"video_id":"dQw4w9WgXcQ"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp api.SubmitVideoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, job.ID.String(), resp.Job.ID)
	assert.Equal(t, "dQw4w9WgXcQ", resp.Job.VideoID)
	assert.Equal(t, string(domain.VideoJobStatusPending), resp.Job.Status)
}

func TestSubmitVideoValidation(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	handler := api.NewVideoHandler(&stubJobService{})
	router := newTestRouter(handler, ownerID)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{`},
		{"missing video_id", `{}`},
		{"empty video_id", `{"video_id":""}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitVideoDuplicate(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	handler := api.NewVideoHandler(&stubJobService{submitErr: service.ErrDuplicateVideoJob})
	router := newTestRouter(handler, ownerID)

	body := bytes.NewBufferString(`{"video_id":"dQw4w9WgXcQ"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Video already submitted", resp.Error)
}

func TestSubmitVideoUnauthorized(t *testing.T) {
	t.Parallel()

	handler := api.NewVideoHandler(&stubJobService{})
	// No user ID in context
	router := newTestRouter(handler, uuid.Nil)

	body := bytes.NewBufferString(`{"video_id":"dQw4w9WgXcQ"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetVideoJobFound(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	job := newTestJob(t, ownerID)
	job.Title = "How Compilers Work"
	job.Flashcards = []domain.Flashcard{{Content: "a compiler translates source code"}}
	require.NoError(t, job.UpdateStatus(domain.VideoJobStatusCompleted))

	handler := api.NewVideoHandler(&stubJobService{getJob: job})
	router := newTestRouter(handler, ownerID)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.VideoJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "How Compilers Work", resp.Title)
	assert.Equal(t, string(domain.VideoJobStatusCompleted), resp.Status)
	require.Len(t, resp.Flashcards, 1)
	assert.Equal(t, "a compiler translates source code", resp.Flashcards[0].Content)
}

func TestGetVideoJobNotFound(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	handler := api.NewVideoHandler(&stubJobService{getErr: service.ErrVideoJobNotFound})
	router := newTestRouter(handler, ownerID)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVideoJobs(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	first := newTestJob(t, ownerID)
	second := newTestJob(t, ownerID)
	handler := api.NewVideoHandler(&stubJobService{
		listJobs: []*domain.VideoJob{first, second},
	})
	router := newTestRouter(handler, ownerID)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []api.VideoJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, first.ID.String(), resp[0].ID)
}

func TestListVideoJobsEmpty(t *testing.T) {
	t.Parallel()

	handler := api.NewVideoHandler(&stubJobService{})
	router := newTestRouter(handler, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Empty list serializes as [], not null
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchVideoJobsRequiresQuery(t *testing.T) {
	t.Parallel()

	handler := api.NewVideoHandler(&stubJobService{})
	router := newTestRouter(handler, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/videos/search", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchVideoJobs(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	job := newTestJob(t, ownerID)
	job.Title = "Intro to Compilers"
	handler := api.NewVideoHandler(&stubJobService{
		searchJobs: []*domain.VideoJob{job},
	})
	router := newTestRouter(handler, ownerID)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/search?q=compilers", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []api.VideoJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Intro to Compilers", resp[0].Title)
}

func TestDeleteVideoJob(t *testing.T) {
	t.Parallel()

	handler := api.NewVideoHandler(&stubJobService{})
	router := newTestRouter(handler, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteVideoJobNotFound(t *testing.T) {
	t.Parallel()

	handler := api.NewVideoHandler(&stubJobService{deleteErr: service.ErrVideoJobNotFound})
	router := newTestRouter(handler, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
