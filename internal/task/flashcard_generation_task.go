package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/media"
	"github.com/elvispreakerebi/jotta-backend/internal/redact"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/elvispreakerebi/jotta-backend/internal/summarization"
	"github.com/google/uuid"
)

// Status constants for FlashcardGenerationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilVideoJobService = errors.New("video job service cannot be nil")
	ErrNilResolver        = errors.New("resolver cannot be nil")
	ErrNilTranscriber     = errors.New("transcriber cannot be nil")
	ErrNilSummarizer      = errors.New("summarizer cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrEmptyOwnerID       = errors.New("owner ID cannot be empty")
	ErrEmptyVideoID       = errors.New("video ID cannot be empty")
)

// VideoJobService defines the job record operations the pipeline needs.
// The job row is the single source of truth: the task re-reads it on every
// execution instead of carrying state in the payload.
type VideoJobService interface {
	// GetJob retrieves the owner's job for the given video ID
	GetJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error)

	// MarkStage moves the job to the given pipeline stage status
	MarkStage(ctx context.Context, jobID uuid.UUID, status domain.VideoJobStatus) error

	// CompleteJob persists metadata, flashcards and the completed status
	// in a single update
	CompleteJob(ctx context.Context, job *domain.VideoJob) error

	// FailJob marks the job failed with a human-readable error detail
	FailJob(ctx context.Context, jobID uuid.UUID, detail string) error
}

// Resolver fetches video metadata and downloads the audio track
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*media.Resolution, error)
}

// Transcriber converts a downloaded audio file into transcript text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Summarizer produces flashcard text for a single transcript chunk
type Summarizer interface {
	Summarize(ctx context.Context, chunk string) (string, error)
}

// flashcardGenerationPayload represents the serialized data stored in the task
type flashcardGenerationPayload struct {
	OwnerID uuid.UUID `json:"owner_id"`
	VideoID string    `json:"video_id"`
}

// FlashcardGenerationTask implements the Task interface for the full
// video-to-flashcards pipeline: download audio, transcribe, summarize
// in chunks, and persist the resulting cards on the job record.
type FlashcardGenerationTask struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	videoID     string
	jobService  VideoJobService
	resolver    Resolver
	transcriber Transcriber
	summarizer  Summarizer
	chunkSize   int
	logger      *slog.Logger
	status      string
	attempts    int
}

// NewFlashcardGenerationTask creates a new flashcard generation task
func NewFlashcardGenerationTask(
	ownerID uuid.UUID,
	videoID string,
	jobService VideoJobService,
	resolver Resolver,
	transcriber Transcriber,
	summarizer Summarizer,
	chunkSize int,
	logger *slog.Logger,
) (*FlashcardGenerationTask, error) {
	if jobService == nil {
		return nil, ErrNilVideoJobService
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if transcriber == nil {
		return nil, ErrNilTranscriber
	}
	if summarizer == nil {
		return nil, ErrNilSummarizer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if ownerID == uuid.Nil {
		return nil, ErrEmptyOwnerID
	}
	if videoID == "" {
		return nil, ErrEmptyVideoID
	}
	if chunkSize <= 0 {
		chunkSize = summarization.DefaultChunkSize
	}

	return &FlashcardGenerationTask{
		id:          uuid.New(),
		ownerID:     ownerID,
		videoID:     videoID,
		jobService:  jobService,
		resolver:    resolver,
		transcriber: transcriber,
		summarizer:  summarizer,
		chunkSize:   chunkSize,
		logger: logger.With(
			"task_type", TaskTypeFlashcardGeneration,
			"owner_id", ownerID,
			"video_id", videoID,
		),
		status: statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *FlashcardGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *FlashcardGenerationTask) Type() string {
	return TaskTypeFlashcardGeneration
}

// Payload returns the task data as a byte slice
func (t *FlashcardGenerationTask) Payload() []byte {
	payload := flashcardGenerationPayload{
		OwnerID: t.ownerID,
		VideoID: t.videoID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *FlashcardGenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Attempts returns the number of executions recorded so far
func (t *FlashcardGenerationTask) Attempts() int {
	return t.attempts
}

// RecordAttempt increments the execution counter
func (t *FlashcardGenerationTask) RecordAttempt() {
	t.attempts++
}

// Abandon marks the video job as permanently failed after the retry
// budget is exhausted. The error detail is redacted before persisting.
func (t *FlashcardGenerationTask) Abandon(ctx context.Context, cause error) {
	job, err := t.jobService.GetJob(ctx, t.ownerID, t.videoID)
	if err != nil {
		t.logger.Error("failed to load job while abandoning task", "error", err)
		return
	}

	detail := fmt.Sprintf("processing failed after %d attempts: %s",
		t.attempts, redact.Error(cause))
	if err := t.jobService.FailJob(ctx, job.ID, detail); err != nil {
		t.logger.Error("failed to mark job failed while abandoning task", "error", err)
	}
}

// Execute runs the full pipeline for one video. Transient failures are
// wrapped in ErrTransient so the runner retries them; permanent failures
// mark the job failed before returning. A missing job record means the
// submission was deleted, which cancels the task silently.
func (t *FlashcardGenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting flashcard generation task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	job, err := t.jobService.GetJob(ctx, t.ownerID, t.videoID)
	if err != nil {
		if store.IsNotFoundError(err) {
			t.logger.Info("job record gone, cancelling task")
			t.status = statusCompleted
			return nil
		}
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to load job: %w", err))
	}

	if job.Status == domain.VideoJobStatusCompleted {
		t.logger.Info("job already completed, nothing to do")
		t.status = statusCompleted
		return nil
	}

	// Stage 1: download audio and metadata
	if err := t.jobService.MarkStage(ctx, job.ID, domain.VideoJobStatusDownloading); err != nil {
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to mark job downloading: %w", err))
	}

	var res *media.Resolution
	defer func() {
		// The audio file is removed on every exit path; a failed removal
		// only costs disk space, so it is logged and swallowed.
		if res != nil && res.AudioPath != "" {
			if err := os.Remove(res.AudioPath); err != nil && !os.IsNotExist(err) {
				t.logger.Warn("failed to remove audio file",
					"audio_path", res.AudioPath,
					"error", err)
			}
		}
	}()

	res, err = t.resolver.Resolve(ctx, t.videoID)
	if err != nil {
		if errors.Is(err, media.ErrVideoNotFound) {
			t.failJob(ctx, job.ID, "video not found or unavailable")
			t.status = statusFailed
			return fmt.Errorf("video not found: %w", err)
		}
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to resolve video: %w", err))
	}

	t.logger.Info("video resolved", "title", res.Title)

	// Stage 2: transcription
	if err := t.jobService.MarkStage(ctx, job.ID, domain.VideoJobStatusTranscribing); err != nil {
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to mark job transcribing: %w", err))
	}

	transcript, err := t.transcriber.Transcribe(ctx, res.AudioPath)
	if err != nil {
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to transcribe audio: %w", err))
	}

	t.logger.Info("transcription finished", "transcript_length", len(transcript))

	// Stage 3: chunked summarization, order preserved
	if err := t.jobService.MarkStage(ctx, job.ID, domain.VideoJobStatusSummarizing); err != nil {
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to mark job summarizing: %w", err))
	}

	chunks := summarization.SplitChunks(transcript, t.chunkSize)
	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := t.summarizer.Summarize(ctx, chunk)
		if err != nil {
			if summarization.IsPermanent(err) {
				t.failJob(ctx, job.ID, "summarization rejected the transcript content")
				t.status = statusFailed
				return fmt.Errorf("summarization failed on chunk %d: %w", i+1, err)
			}
			t.status = statusFailed
			return t.transient(fmt.Errorf("failed to summarize chunk %d: %w", i+1, err))
		}
		summaries = append(summaries, summary)
	}

	cards := summarization.ParseFlashcards(summarization.JoinSummaries(summaries))
	t.logger.Info("flashcards generated",
		"chunk_count", len(chunks),
		"card_count", len(cards))

	// Final stage: metadata, flashcards and completed status in one update
	job.Title = res.Title
	job.Description = res.Description
	job.ThumbnailURL = res.ThumbnailURL
	job.ErrorDetail = ""
	job.Flashcards = cards
	if err := job.UpdateStatus(domain.VideoJobStatusCompleted); err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to set completed status: %w", err)
	}

	if err := t.jobService.CompleteJob(ctx, job); err != nil {
		t.status = statusFailed
		return t.transient(fmt.Errorf("failed to persist completed job: %w", err))
	}

	t.status = statusCompleted
	t.logger.Info("flashcard generation task completed successfully",
		"card_count", len(cards))
	return nil
}

// transient wraps an error so the runner schedules a retry.
func (t *FlashcardGenerationTask) transient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// failJob marks the job failed, logging rather than propagating any
// persistence error since the original failure takes precedence.
func (t *FlashcardGenerationTask) failJob(ctx context.Context, jobID uuid.UUID, detail string) {
	if err := t.jobService.FailJob(ctx, jobID, detail); err != nil {
		t.logger.Error("failed to mark job failed", "error", err)
	}
}
