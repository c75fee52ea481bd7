package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// VideoJobStatus represents the processing state of a video job as it
// moves through the flashcard-generation pipeline.
type VideoJobStatus string

// Possible video job status values
const (
	VideoJobStatusPending      VideoJobStatus = "pending"
	VideoJobStatusDownloading  VideoJobStatus = "downloading"
	VideoJobStatusTranscribing VideoJobStatus = "transcribing"
	VideoJobStatusSummarizing  VideoJobStatus = "summarizing"
	VideoJobStatusCompleted    VideoJobStatus = "completed"
	VideoJobStatusFailed       VideoJobStatus = "failed"
)

// Common validation errors for VideoJob
var (
	ErrEmptyVideoJobID       = errors.New("video job ID cannot be empty")
	ErrEmptyVideoJobOwnerID  = errors.New("video job owner ID cannot be empty")
	ErrEmptyVideoID          = errors.New("video ID cannot be empty")
	ErrInvalidVideoJobStatus = errors.New("invalid video job status")
)

// Flashcard is a single generated flashcard. Cards are stored inline on
// the job record as an ordered list; order is the order the summarizer
// produced them in.
type Flashcard struct {
	Content string `json:"content"`
}

// VideoJob represents one flashcard-generation request for a single
// YouTube video submitted by a user. It tracks the video metadata, the
// pipeline state, and the generated flashcards.
//
// Exactly one VideoJob exists per (OwnerID, VideoID) pair; the store
// enforces this with a unique constraint.
type VideoJob struct {
	ID           uuid.UUID      `json:"id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	VideoID      string         `json:"video_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Status       VideoJobStatus `json:"status"`
	ErrorDetail  string         `json:"error_detail,omitempty"`
	Flashcards   []Flashcard    `json:"flashcards"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewVideoJob creates a new VideoJob for the given owner and video ID.
// It generates a new UUID for the job, sets the status to pending, and
// sets the creation/update timestamps.
// Returns an error if validation fails.
func NewVideoJob(ownerID uuid.UUID, videoID string) (*VideoJob, error) {
	job := &VideoJob{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		VideoID:    videoID,
		Status:     VideoJobStatusPending,
		Flashcards: []Flashcard{},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the VideoJob has valid data.
// Returns an error if any field fails validation.
func (j *VideoJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyVideoJobID
	}

	if j.OwnerID == uuid.Nil {
		return ErrEmptyVideoJobOwnerID
	}

	if j.VideoID == "" {
		return ErrEmptyVideoID
	}

	if !isValidVideoJobStatus(j.Status) {
		return ErrInvalidVideoJobStatus
	}

	return nil
}

// UpdateStatus updates the job's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (j *VideoJob) UpdateStatus(status VideoJobStatus) error {
	if !isValidVideoJobStatus(status) {
		return ErrInvalidVideoJobStatus
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the job has reached a terminal status, i.e.
// one the pipeline will not move it out of automatically.
func (j *VideoJob) IsTerminal() bool {
	return j.Status == VideoJobStatusCompleted || j.Status == VideoJobStatusFailed
}

// ResetForRetry prepares a failed job for re-submission: the status goes
// back to pending and any stale error detail and flashcards are cleared.
// Returns an error if the job is not in the failed state.
func (j *VideoJob) ResetForRetry() error {
	if j.Status != VideoJobStatusFailed {
		return ErrInvalidVideoJobStatus
	}

	j.Status = VideoJobStatusPending
	j.ErrorDetail = ""
	j.Flashcards = []Flashcard{}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidVideoJobStatus checks if the given status is a valid VideoJobStatus.
func isValidVideoJobStatus(status VideoJobStatus) bool {
	switch status {
	case VideoJobStatusPending, VideoJobStatusDownloading, VideoJobStatusTranscribing,
		VideoJobStatusSummarizing, VideoJobStatusCompleted, VideoJobStatusFailed:
		return true
	default:
		return false
	}
}
