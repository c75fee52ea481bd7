package transcription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/transcription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts a sequence of poll results for a submitted job.
type fakeProvider struct {
	jobID      string
	submitErr  error
	results    []*transcription.PollResult
	pollErr    error
	submits    int
	polls      int
}

func (f *fakeProvider) Submit(ctx context.Context, audioPath string) (string, error) {
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.jobID, nil
}

func (f *fakeProvider) Poll(ctx context.Context, jobID string) (*transcription.PollResult, error) {
	f.polls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	idx := f.polls - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

func TestPollerTranscribeCompletes(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		jobID: "job-1",
		results: []*transcription.PollResult{
			{Status: transcription.JobStatusQueued},
			{Status: transcription.JobStatusProcessing},
			{Status: transcription.JobStatusCompleted, Text: "hello transcript"},
		},
	}
	poller := transcription.NewPoller(provider, time.Millisecond, 10, nil)

	text, err := poller.Transcribe(context.Background(), "/tmp/audio.mp3")

	require.NoError(t, err)
	assert.Equal(t, "hello transcript", text)
	assert.Equal(t, 1, provider.submits)
	assert.Equal(t, 3, provider.polls)
}

func TestPollerTranscribeProviderFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		jobID: "job-2",
		results: []*transcription.PollResult{
			{Status: transcription.JobStatusProcessing},
			{Status: transcription.JobStatusFailed, ErrorDetail: "audio too short"},
		},
	}
	poller := transcription.NewPoller(provider, time.Millisecond, 10, nil)

	_, err := poller.Transcribe(context.Background(), "/tmp/audio.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, transcription.ErrTranscriptionFailed)
	assert.Contains(t, err.Error(), "audio too short")
}

func TestPollerTranscribePollLimit(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		jobID: "job-3",
		results: []*transcription.PollResult{
			{Status: transcription.JobStatusProcessing},
		},
	}
	poller := transcription.NewPoller(provider, time.Millisecond, 3, nil)

	_, err := poller.Transcribe(context.Background(), "/tmp/audio.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, transcription.ErrPollLimitExceeded)
	assert.Equal(t, 3, provider.polls)
}

func TestPollerTranscribeSubmitError(t *testing.T) {
	t.Parallel()

	submitErr := errors.New("upload rejected")
	provider := &fakeProvider{submitErr: submitErr}
	poller := transcription.NewPoller(provider, time.Millisecond, 3, nil)

	_, err := poller.Transcribe(context.Background(), "/tmp/audio.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, submitErr)
	assert.Zero(t, provider.polls)
}

func TestPollerTranscribeContextCanceled(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		jobID: "job-4",
		results: []*transcription.PollResult{
			{Status: transcription.JobStatusProcessing},
		},
	}
	poller := transcription.NewPoller(provider, time.Hour, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := poller.Transcribe(ctx, "/tmp/audio.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
