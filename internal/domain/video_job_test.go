package domain_test

import (
	"testing"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVideoJob(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name        string
		ownerID     uuid.UUID
		videoID     string
		expectError error
	}{
		{
			name:    "valid job",
			ownerID: ownerID,
			videoID: "dQw4w9WgXcQ",
		},
		{
			name:        "empty owner ID",
			ownerID:     uuid.Nil,
			videoID:     "dQw4w9WgXcQ",
			expectError: domain.ErrEmptyVideoJobOwnerID,
		},
		{
			name:        "empty video ID",
			ownerID:     ownerID,
			videoID:     "",
			expectError: domain.ErrEmptyVideoID,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			job, err := domain.NewVideoJob(tc.ownerID, tc.videoID)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, job)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, job)
			assert.NotEqual(t, uuid.Nil, job.ID)
			assert.Equal(t, tc.ownerID, job.OwnerID)
			assert.Equal(t, tc.videoID, job.VideoID)
			assert.Equal(t, domain.VideoJobStatusPending, job.Status)
			assert.Empty(t, job.Flashcards)
			assert.NotNil(t, job.Flashcards)
			assert.False(t, job.CreatedAt.IsZero())
			assert.False(t, job.UpdatedAt.IsZero())
		})
	}
}

func TestVideoJobUpdateStatus(t *testing.T) {
	t.Parallel()

	job, err := domain.NewVideoJob(uuid.New(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	stages := []domain.VideoJobStatus{
		domain.VideoJobStatusDownloading,
		domain.VideoJobStatusTranscribing,
		domain.VideoJobStatusSummarizing,
		domain.VideoJobStatusCompleted,
	}

	for _, status := range stages {
		require.NoError(t, job.UpdateStatus(status))
		assert.Equal(t, status, job.Status)
	}

	err = job.UpdateStatus(domain.VideoJobStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidVideoJobStatus)
	assert.Equal(t, domain.VideoJobStatusCompleted, job.Status)
}

func TestVideoJobIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   domain.VideoJobStatus
		terminal bool
	}{
		{domain.VideoJobStatusPending, false},
		{domain.VideoJobStatusDownloading, false},
		{domain.VideoJobStatusTranscribing, false},
		{domain.VideoJobStatusSummarizing, false},
		{domain.VideoJobStatusCompleted, true},
		{domain.VideoJobStatusFailed, true},
	}

	for _, tc := range tests {
		job := &domain.VideoJob{Status: tc.status}
		assert.Equal(t, tc.terminal, job.IsTerminal(), "status %s", tc.status)
	}
}

func TestVideoJobResetForRetry(t *testing.T) {
	t.Parallel()

	t.Run("failed job resets to pending", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewVideoJob(uuid.New(), "dQw4w9WgXcQ")
		require.NoError(t, err)

		job.Status = domain.VideoJobStatusFailed
		job.ErrorDetail = "processing failed after 5 attempts"
		job.Flashcards = []domain.Flashcard{{Content: "stale card"}}

		require.NoError(t, job.ResetForRetry())

		assert.Equal(t, domain.VideoJobStatusPending, job.Status)
		assert.Empty(t, job.ErrorDetail)
		assert.Empty(t, job.Flashcards)
	})

	t.Run("non-failed job cannot be reset", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewVideoJob(uuid.New(), "dQw4w9WgXcQ")
		require.NoError(t, err)

		err = job.ResetForRetry()
		assert.ErrorIs(t, err, domain.ErrInvalidVideoJobStatus)
		assert.Equal(t, domain.VideoJobStatusPending, job.Status)
	})
}
