package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/events"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/elvispreakerebi/jotta-backend/internal/task"
	"github.com/google/uuid"
)

// VideoJobRepository defines the repository interface for the service layer.
// It mirrors store.VideoJobStore plus access to the underlying database
// connection for transaction management.
type VideoJobRepository interface {
	// Create saves a new video job to the store
	Create(ctx context.Context, job *domain.VideoJob) error

	// GetByOwnerAndVideo retrieves the job an owner has for a given video ID
	GetByOwnerAndVideo(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)

	// Update saves changes to an existing video job
	Update(ctx context.Context, job *domain.VideoJob) error

	// UpdateStatus updates only the status and error detail of a job
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VideoJobStatus, errorDetail string) error

	// ListByOwner retrieves all jobs belonging to the owner, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.VideoJob, error)

	// SearchByTitle retrieves the owner's jobs matching the title query
	SearchByTitle(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.VideoJob, error)

	// Delete removes a job scoped to the owner
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) VideoJobRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// VideoJobService provides video job operations for both the HTTP layer
// and the background pipeline.
type VideoJobService interface {
	// SubmitVideo creates a job for the video and enqueues it for
	// processing. A previously failed job for the same video is reset and
	// retried; any other existing job is a duplicate.
	SubmitVideo(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)

	// GetVideoJob retrieves the owner's job for the given video ID
	GetVideoJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)

	// ListVideoJobs retrieves all the owner's jobs, newest first
	ListVideoJobs(ctx context.Context, ownerID uuid.UUID) ([]*domain.VideoJob, error)

	// SearchVideoJobs retrieves the owner's jobs whose title contains the query
	SearchVideoJobs(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.VideoJob, error)

	// DeleteVideoJob removes the owner's job for the given video ID
	DeleteVideoJob(ctx context.Context, ownerID uuid.UUID, videoID string) error

	// GetJob, MarkStage, CompleteJob and FailJob serve the background
	// pipeline; see task.VideoJobService.
	GetJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)
	MarkStage(ctx context.Context, jobID uuid.UUID, status domain.VideoJobStatus) error
	CompleteJob(ctx context.Context, job *domain.VideoJob) error
	FailJob(ctx context.Context, jobID uuid.UUID, detail string) error
}

// VideoJobServiceError wraps errors from the video job service with context.
type VideoJobServiceError struct {
	// Operation is the operation that failed (e.g., "submit_video")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for VideoJobServiceError.
func (e *VideoJobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("video job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *VideoJobServiceError) Unwrap() error {
	return e.Err
}

// NewVideoJobServiceError creates a new VideoJobServiceError.
// It returns known sentinel errors directly without wrapping.
func NewVideoJobServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrVideoJobNotFound) ||
		errors.Is(err, ErrDuplicateVideoJob) ||
		errors.Is(err, ErrInvalidVideoID) {
		return err
	}

	if errors.Is(err, store.ErrVideoJobNotFound) {
		return ErrVideoJobNotFound
	}
	if errors.Is(err, store.ErrVideoJobExists) {
		return ErrDuplicateVideoJob
	}

	return &VideoJobServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// videoJobServiceImpl implements the VideoJobService interface
type videoJobServiceImpl struct {
	jobRepo      VideoJobRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewVideoJobService creates a new VideoJobService.
// It returns an error if any of the required dependencies are nil.
func NewVideoJobService(
	jobRepo VideoJobRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (VideoJobService, error) {
	if jobRepo == nil {
		return nil, &VideoJobServiceError{
			Operation: "create_service",
			Message:   "jobRepo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &VideoJobServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &videoJobServiceImpl{
		jobRepo:      jobRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "video_job_service"),
	}, nil
}

// Ensure the service satisfies the pipeline's consumer interface
var _ task.VideoJobService = (VideoJobService)(nil)

// SubmitVideo creates a job for the video and emits a task request event.
// Duplicate policy: any existing non-failed job is a duplicate; a failed
// job is reset to pending and re-enqueued.
func (s *videoJobServiceImpl) SubmitVideo(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	existing, err := s.jobRepo.GetByOwnerAndVideo(ctx, ownerID, videoID)
	if err != nil && !errors.Is(err, store.ErrVideoJobNotFound) {
		s.logger.Error("failed to check for existing job",
			"error", err,
			"owner_id", ownerID,
			"video_id", videoID)
		return nil, NewVideoJobServiceError("submit_video", "failed to check for existing job", err)
	}

	var job *domain.VideoJob
	switch {
	case existing == nil:
		job, err = s.createJob(ctx, ownerID, videoID)
	case existing.Status == domain.VideoJobStatusFailed:
		job, err = s.retryJob(ctx, existing)
	default:
		s.logger.Debug("duplicate video submission",
			"owner_id", ownerID,
			"video_id", videoID,
			"status", existing.Status)
		return nil, ErrDuplicateVideoJob
	}
	if err != nil {
		return nil, err
	}

	if err := s.emitTaskRequest(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// createJob persists a fresh pending job inside a transaction.
func (s *videoJobServiceImpl) createJob(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	job, err := domain.NewVideoJob(ownerID, videoID)
	if err != nil {
		s.logger.Error("failed to create job object",
			"error", err,
			"owner_id", ownerID,
			"video_id", videoID)
		return nil, NewVideoJobServiceError("submit_video", "failed to create job object", err)
	}

	err = store.RunInTransaction(ctx, s.jobRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.jobRepo.WithTx(tx)
		if err := txRepo.Create(ctx, job); err != nil {
			// A concurrent submit can win the race; surface it as a duplicate
			if errors.Is(err, store.ErrVideoJobExists) {
				return ErrDuplicateVideoJob
			}
			s.logger.Error("failed to create job in transaction",
				"error", err,
				"owner_id", ownerID,
				"video_id", videoID)
			return NewVideoJobServiceError("submit_video", "failed to save job to database", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("video job created with pending status",
		"job_id", job.ID,
		"owner_id", ownerID,
		"video_id", videoID)
	return job, nil
}

// retryJob resets a failed job to pending inside a transaction.
func (s *videoJobServiceImpl) retryJob(
	ctx context.Context,
	job *domain.VideoJob,
) (*domain.VideoJob, error) {
	if err := job.ResetForRetry(); err != nil {
		return nil, NewVideoJobServiceError("submit_video", "failed to reset failed job", err)
	}

	err := store.RunInTransaction(ctx, s.jobRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.jobRepo.WithTx(tx)
		if err := txRepo.Update(ctx, job); err != nil {
			s.logger.Error("failed to reset job in transaction",
				"error", err,
				"job_id", job.ID)
			return NewVideoJobServiceError("submit_video", "failed to reset failed job", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("failed video job reset for retry",
		"job_id", job.ID,
		"owner_id", job.OwnerID,
		"video_id", job.VideoID)
	return job, nil
}

// emitTaskRequest publishes the event that triggers pipeline processing.
func (s *videoJobServiceImpl) emitTaskRequest(ctx context.Context, job *domain.VideoJob) error {
	payload := struct {
		OwnerID uuid.UUID `json:"owner_id"`
		VideoID string    `json:"video_id"`
	}{
		OwnerID: job.OwnerID,
		VideoID: job.VideoID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeFlashcardGeneration, payload)
	if err != nil {
		s.logger.Error("failed to create task request event",
			"error", err,
			"job_id", job.ID)
		return NewVideoJobServiceError("submit_video", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit task request event",
			"error", err,
			"job_id", job.ID,
			"event_id", event.ID)
		return NewVideoJobServiceError("submit_video", "failed to emit event", err)
	}

	s.logger.Info("task request event emitted",
		"job_id", job.ID,
		"event_id", event.ID)
	return nil
}

// GetVideoJob retrieves the owner's job for the given video ID.
func (s *videoJobServiceImpl) GetVideoJob(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	job, err := s.jobRepo.GetByOwnerAndVideo(ctx, ownerID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrVideoJobNotFound) {
			return nil, ErrVideoJobNotFound
		}
		s.logger.Error("failed to retrieve job",
			"error", err,
			"owner_id", ownerID,
			"video_id", videoID)
		return nil, NewVideoJobServiceError("get_video_job", "failed to retrieve job", err)
	}

	return job, nil
}

// ListVideoJobs retrieves all the owner's jobs, newest first.
func (s *videoJobServiceImpl) ListVideoJobs(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.VideoJob, error) {
	jobs, err := s.jobRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list jobs",
			"error", err,
			"owner_id", ownerID)
		return nil, NewVideoJobServiceError("list_video_jobs", "failed to list jobs", err)
	}

	return jobs, nil
}

// SearchVideoJobs retrieves the owner's jobs whose title contains the query.
func (s *videoJobServiceImpl) SearchVideoJobs(
	ctx context.Context,
	ownerID uuid.UUID,
	query string,
) ([]*domain.VideoJob, error) {
	jobs, err := s.jobRepo.SearchByTitle(ctx, ownerID, query)
	if err != nil {
		s.logger.Error("failed to search jobs",
			"error", err,
			"owner_id", ownerID)
		return nil, NewVideoJobServiceError("search_video_jobs", "failed to search jobs", err)
	}

	return jobs, nil
}

// DeleteVideoJob removes the owner's job for the given video ID.
func (s *videoJobServiceImpl) DeleteVideoJob(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) error {
	job, err := s.jobRepo.GetByOwnerAndVideo(ctx, ownerID, videoID)
	if err != nil {
		if errors.Is(err, store.ErrVideoJobNotFound) {
			return ErrVideoJobNotFound
		}
		return NewVideoJobServiceError("delete_video_job", "failed to retrieve job", err)
	}

	if err := s.jobRepo.Delete(ctx, ownerID, job.ID); err != nil {
		if errors.Is(err, store.ErrVideoJobNotFound) {
			return ErrVideoJobNotFound
		}
		s.logger.Error("failed to delete job",
			"error", err,
			"job_id", job.ID)
		return NewVideoJobServiceError("delete_video_job", "failed to delete job", err)
	}

	s.logger.Info("video job deleted",
		"job_id", job.ID,
		"owner_id", ownerID,
		"video_id", videoID)
	return nil
}

// GetJob serves the pipeline. Store-level errors are returned unmapped so
// the task can distinguish a deleted job from a transient failure.
func (s *videoJobServiceImpl) GetJob(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	return s.jobRepo.GetByOwnerAndVideo(ctx, ownerID, videoID)
}

// MarkStage moves the job to the given pipeline stage status.
func (s *videoJobServiceImpl) MarkStage(
	ctx context.Context,
	jobID uuid.UUID,
	status domain.VideoJobStatus,
) error {
	return s.jobRepo.UpdateStatus(ctx, jobID, status, "")
}

// CompleteJob persists metadata, flashcards and the completed status.
func (s *videoJobServiceImpl) CompleteJob(ctx context.Context, job *domain.VideoJob) error {
	return s.jobRepo.Update(ctx, job)
}

// FailJob marks the job failed with a human-readable error detail.
func (s *videoJobServiceImpl) FailJob(ctx context.Context, jobID uuid.UUID, detail string) error {
	return s.jobRepo.UpdateStatus(ctx, jobID, domain.VideoJobStatusFailed, detail)
}

// validateVideoID applies basic shape checks to the external video ID.
// YouTube IDs are short, non-empty and contain no whitespace.
func validateVideoID(videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return fmt.Errorf("%w: video ID is required", ErrInvalidVideoID)
	}
	if len(videoID) > 64 {
		return fmt.Errorf("%w: video ID too long", ErrInvalidVideoID)
	}
	if strings.ContainsAny(videoID, " \t\n") {
		return fmt.Errorf("%w: video ID contains whitespace", ErrInvalidVideoID)
	}
	return nil
}
