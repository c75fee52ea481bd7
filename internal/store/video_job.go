package store

import (
	"context"
	"database/sql"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/google/uuid"
)

// VideoJobStore defines the interface for video job persistence.
type VideoJobStore interface {
	// Create saves a new video job to the store.
	// It handles domain validation internally.
	// Returns ErrVideoJobExists if the owner already has a job for the
	// same video, enforced by the (owner_id, video_id) unique constraint.
	// Returns validation errors from the domain VideoJob if data is invalid.
	Create(ctx context.Context, job *domain.VideoJob) error

	// GetByID retrieves a video job by its unique ID.
	// Returns ErrVideoJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VideoJob, error)

	// GetByOwnerAndVideo retrieves the job an owner has for a given video ID.
	// Returns ErrVideoJobNotFound if no such job exists.
	GetByOwnerAndVideo(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)

	// Update saves changes to an existing video job, including metadata,
	// status, error detail and flashcards.
	// Returns ErrVideoJobNotFound if the job does not exist.
	// Returns validation errors if the job data is invalid.
	Update(ctx context.Context, job *domain.VideoJob) error

	// UpdateStatus updates only the status and error detail of an existing job.
	// Pass an empty errorDetail for non-failed statuses.
	// Returns ErrVideoJobNotFound if the job does not exist.
	// Returns validation errors if the status is invalid.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VideoJobStatus, errorDetail string) error

	// ListByOwner retrieves all jobs belonging to the owner, newest first.
	// Returns an empty slice if the owner has no jobs.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.VideoJob, error)

	// SearchByTitle retrieves the owner's jobs whose title contains the
	// query string, matched case-insensitively, newest first.
	SearchByTitle(ctx context.Context, ownerID uuid.UUID, query string) ([]*domain.VideoJob, error)

	// Delete removes a job from the store by its ID, scoped to the owner.
	// Returns ErrVideoJobNotFound if the job does not exist or belongs to
	// a different owner.
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error

	// WithTx returns a new VideoJobStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) VideoJobStore
}
