package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/platform/logger"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/google/uuid"
)

// PostgresVideoJobStore implements the store.VideoJobStore interface
// using a PostgreSQL database as the storage backend. Flashcards are
// stored inline on the row as a JSONB column.
type PostgresVideoJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVideoJobStore creates a new PostgreSQL implementation of the
// VideoJobStore interface.
// It accepts a database connection or transaction managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresVideoJobStore(db store.DBTX, logger *slog.Logger) *PostgresVideoJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVideoJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "video_job_store")),
	}
}

// Ensure PostgresVideoJobStore implements store.VideoJobStore interface
var _ store.VideoJobStore = (*PostgresVideoJobStore)(nil)

// videoJobColumns is the column list shared by all SELECT queries so
// scanVideoJob stays in sync with a single source of truth.
const videoJobColumns = `id, owner_id, video_id, title, description, thumbnail_url,
	status, error_detail, flashcards, created_at, updated_at`

// Create implements store.VideoJobStore.Create
// Returns store.ErrVideoJobExists if the owner already has a job for the video.
// Returns store.ErrInvalidEntity if the owner ID doesn't exist (foreign key violation).
func (s *PostgresVideoJobStore) Create(ctx context.Context, job *domain.VideoJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("video job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	flashcards, err := marshalFlashcards(job.Flashcards)
	if err != nil {
		log.Error("failed to marshal flashcards",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO video_jobs (id, owner_id, video_id, title, description, thumbnail_url,
			status, error_detail, flashcards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.OwnerID,
		job.VideoID,
		job.Title,
		job.Description,
		job.ThumbnailURL,
		job.Status,
		job.ErrorDetail,
		flashcards,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("video job already exists for owner and video",
				slog.String("owner_id", job.OwnerID.String()),
				slog.String("video_id", job.VideoID))
			return store.ErrVideoJobExists
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during video job creation",
				slog.String("error", err.Error()),
				slog.String("owner_id", job.OwnerID.String()))
			return fmt.Errorf("%w: owner with ID %s not found",
				store.ErrInvalidEntity, job.OwnerID)
		}

		log.Error("failed to create video job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("video_id", job.VideoID))
		return MapError(err)
	}

	log.Info("video job created successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("owner_id", job.OwnerID.String()),
		slog.String("video_id", job.VideoID))
	return nil
}

// GetByID implements store.VideoJobStore.GetByID
// Returns store.ErrVideoJobNotFound if the job does not exist.
func (s *PostgresVideoJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VideoJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + videoJobColumns + ` FROM video_jobs WHERE id = $1`

	job, err := scanVideoJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("video job not found", slog.String("job_id", id.String()))
			return nil, store.ErrVideoJobNotFound
		}
		log.Error("failed to get video job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, err
	}

	return job, nil
}

// GetByOwnerAndVideo implements store.VideoJobStore.GetByOwnerAndVideo
// Returns store.ErrVideoJobNotFound if no such job exists.
func (s *PostgresVideoJobStore) GetByOwnerAndVideo(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + videoJobColumns + ` FROM video_jobs WHERE owner_id = $1 AND video_id = $2`

	job, err := scanVideoJob(s.db.QueryRowContext(ctx, query, ownerID, videoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("video job not found for owner and video",
				slog.String("owner_id", ownerID.String()),
				slog.String("video_id", videoID))
			return nil, store.ErrVideoJobNotFound
		}
		log.Error("failed to get video job by owner and video",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("video_id", videoID))
		return nil, err
	}

	return job, nil
}

// Update implements store.VideoJobStore.Update
// It writes metadata, status, error detail and flashcards in one statement.
// Returns store.ErrVideoJobNotFound if the job does not exist.
func (s *PostgresVideoJobStore) Update(ctx context.Context, job *domain.VideoJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("video job validation failed during update",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	flashcards, err := marshalFlashcards(job.Flashcards)
	if err != nil {
		log.Error("failed to marshal flashcards",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE video_jobs
		SET title = $1, description = $2, thumbnail_url = $3, status = $4,
			error_detail = $5, flashcards = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.ThumbnailURL,
		job.Status,
		job.ErrorDetail,
		flashcards,
		job.UpdatedAt,
		job.ID,
	)

	if err != nil {
		log.Error("failed to update video job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("video job not found for update",
			slog.String("job_id", job.ID.String()))
		return store.ErrVideoJobNotFound
	}

	log.Info("video job updated successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

// UpdateStatus implements store.VideoJobStore.UpdateStatus
// Returns store.ErrVideoJobNotFound if the job does not exist.
// Returns domain.ErrInvalidVideoJobStatus if the status is invalid.
func (s *PostgresVideoJobStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.VideoJobStatus,
	errorDetail string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate the status through a throwaway job so the enum rules
	// live in one place.
	tempJob := &domain.VideoJob{
		ID:        id,
		OwnerID:   uuid.New(),
		VideoID:   "temp",
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tempJob.Validate(); err != nil {
		log.Warn("video job validation failed during status update",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	query := `
		UPDATE video_jobs
		SET status = $1, error_detail = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorDetail, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update video job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("video job not found for status update",
			slog.String("job_id", id.String()))
		return store.ErrVideoJobNotFound
	}

	log.Info("video job status updated",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// ListByOwner implements store.VideoJobStore.ListByOwner
// Jobs are returned newest first.
func (s *PostgresVideoJobStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.VideoJob, error) {
	query := `SELECT ` + videoJobColumns + `
		FROM video_jobs
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	return s.queryVideoJobs(ctx, query, ownerID)
}

// SearchByTitle implements store.VideoJobStore.SearchByTitle
// The query string is matched as a case-insensitive substring of the title.
func (s *PostgresVideoJobStore) SearchByTitle(
	ctx context.Context,
	ownerID uuid.UUID,
	queryStr string,
) ([]*domain.VideoJob, error) {
	query := `SELECT ` + videoJobColumns + `
		FROM video_jobs
		WHERE owner_id = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY created_at DESC`

	return s.queryVideoJobs(ctx, query, ownerID, queryStr)
}

// Delete implements store.VideoJobStore.Delete
// Returns store.ErrVideoJobNotFound if the job does not exist or belongs
// to a different owner.
func (s *PostgresVideoJobStore) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM video_jobs WHERE id = $1 AND owner_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete video job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("video job not found for delete",
			slog.String("job_id", id.String()),
			slog.String("owner_id", ownerID.String()))
		return store.ErrVideoJobNotFound
	}

	log.Info("video job deleted successfully",
		slog.String("job_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return nil
}

// WithTx implements store.VideoJobStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresVideoJobStore) WithTx(tx *sql.Tx) store.VideoJobStore {
	return &PostgresVideoJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// queryVideoJobs runs a multi-row query and scans the results.
// Returns an empty slice rather than nil when nothing matches.
func (s *PostgresVideoJobStore) queryVideoJobs(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.VideoJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query video jobs",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	jobs := []*domain.VideoJob{}
	for rows.Next() {
		job, err := scanVideoJob(rows)
		if err != nil {
			log.Error("failed to scan video job row",
				slog.String("error", err.Error()))
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return jobs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanVideoJob scans a row matching videoJobColumns into a domain.VideoJob.
func scanVideoJob(row rowScanner) (*domain.VideoJob, error) {
	var job domain.VideoJob
	var status string
	var errorDetail sql.NullString
	var flashcards []byte

	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.VideoID,
		&job.Title,
		&job.Description,
		&job.ThumbnailURL,
		&status,
		&errorDetail,
		&flashcards,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = domain.VideoJobStatus(status)
	job.ErrorDetail = errorDetail.String

	if len(flashcards) > 0 {
		if err := json.Unmarshal(flashcards, &job.Flashcards); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flashcards: %w", err)
		}
	}
	if job.Flashcards == nil {
		job.Flashcards = []domain.Flashcard{}
	}

	return &job, nil
}

// marshalFlashcards serializes flashcards for the JSONB column.
// A nil slice is stored as an empty JSON array so reads never see NULL.
func marshalFlashcards(cards []domain.Flashcard) ([]byte, error) {
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	return json.Marshal(cards)
}
