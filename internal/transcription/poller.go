package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Poller adapts an asynchronous Provider to the synchronous Transcriber
// interface. It submits the audio, then polls at a fixed interval until
// the job completes, fails, or the poll limit is reached. The limit keeps
// a stalled provider from pinning a pipeline worker forever.
type Poller struct {
	provider Provider
	interval time.Duration
	maxPolls int
	logger   *slog.Logger
}

// NewPoller creates a Poller with the given poll interval and maximum
// number of polls. Non-positive values fall back to 5 seconds and 120
// polls respectively.
func NewPoller(provider Provider, interval time.Duration, maxPolls int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 120
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		provider: provider,
		interval: interval,
		maxPolls: maxPolls,
		logger:   logger.With(slog.String("component", "transcription_poller")),
	}
}

// Ensure Poller implements Transcriber
var _ Transcriber = (*Poller)(nil)

// Transcribe implements Transcriber.
// Returns ErrPollLimitExceeded if the job is still running after maxPolls
// polls, and ErrTranscriptionFailed if the provider reports failure.
func (p *Poller) Transcribe(ctx context.Context, audioPath string) (string, error) {
	jobID, err := p.provider.Submit(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to submit transcription job: %w", err)
	}

	log := p.logger.With(slog.String("job_id", jobID))
	log.Info("transcription job submitted")

	for poll := 1; poll <= p.maxPolls; poll++ {
		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		result, err := p.provider.Poll(ctx, jobID)
		if err != nil {
			return "", fmt.Errorf("failed to poll transcription job: %w", err)
		}

		switch result.Status {
		case JobStatusCompleted:
			log.Info("transcription job completed", slog.Int("polls", poll))
			return result.Text, nil
		case JobStatusFailed:
			log.Warn("transcription job failed",
				slog.String("detail", result.ErrorDetail))
			return "", fmt.Errorf("%w: %s", ErrTranscriptionFailed, result.ErrorDetail)
		case JobStatusQueued, JobStatusProcessing:
			log.Debug("transcription job still running",
				slog.Int("poll", poll),
				slog.String("status", string(result.Status)))
		default:
			return "", fmt.Errorf("%w: unknown job status %q", ErrTranscriptionFailed, result.Status)
		}
	}

	return "", fmt.Errorf("%w: gave up after %d polls", ErrPollLimitExceeded, p.maxPolls)
}
