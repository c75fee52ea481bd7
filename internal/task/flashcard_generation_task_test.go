package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/media"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/elvispreakerebi/jotta-backend/internal/summarization"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJobService records pipeline stage transitions for a single job.
type mockJobService struct {
	job         *domain.VideoJob
	getErr      error
	stages      []domain.VideoJobStatus
	completed   *domain.VideoJob
	failDetail  string
	failedJobID uuid.UUID
}

func (m *mockJobService) GetJob(ctx context.Context, ownerID uuid.UUID, videoID string) (*domain.VideoJob, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.job, nil
}

func (m *mockJobService) MarkStage(ctx context.Context, jobID uuid.UUID, status domain.VideoJobStatus) error {
	m.stages = append(m.stages, status)
	return nil
}

func (m *mockJobService) CompleteJob(ctx context.Context, job *domain.VideoJob) error {
	m.completed = job
	return nil
}

func (m *mockJobService) FailJob(ctx context.Context, jobID uuid.UUID, detail string) error {
	m.failedJobID = jobID
	m.failDetail = detail
	return nil
}

type mockResolver struct {
	res    *media.Resolution
	err    error
	called int
}

func (m *mockResolver) Resolve(ctx context.Context, videoID string) (*media.Resolution, error) {
	m.called++
	if m.err != nil {
		return nil, m.err
	}
	return m.res, nil
}

type mockTranscriber struct {
	transcript string
	err        error
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.transcript, nil
}

// mockSummarizer echoes each chunk back with a prefix so tests can verify
// chunk ordering in the joined output.
type mockSummarizer struct {
	err    error
	chunks []string
}

func (m *mockSummarizer) Summarize(ctx context.Context, chunk string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.chunks = append(m.chunks, chunk)
	return fmt.Sprintf("summary %d", len(m.chunks)), nil
}

func newTestJob(t *testing.T) *domain.VideoJob {
	t.Helper()
	job, err := domain.NewVideoJob(uuid.New(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	return job
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))
	return path
}

func newPipelineTask(
	t *testing.T,
	jobs *mockJobService,
	resolver *mockResolver,
	transcriber *mockTranscriber,
	summarizer *mockSummarizer,
	chunkSize int,
) *FlashcardGenerationTask {
	t.Helper()
	task, err := NewFlashcardGenerationTask(
		jobs.job.OwnerID,
		jobs.job.VideoID,
		jobs,
		resolver,
		transcriber,
		summarizer,
		chunkSize,
		slog.Default(),
	)
	require.NoError(t, err)
	return task
}

func TestFlashcardGenerationTaskHappyPath(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	audioPath := writeTempAudio(t)

	jobs := &mockJobService{job: job}
	resolver := &mockResolver{res: &media.Resolution{
		Title:        "How Compilers Work",
		Description:  "A tour of lexing and parsing",
		ThumbnailURL: "https://example.com/thumb.jpg",
		AudioPath:    audioPath,
	}}
	transcriber := &mockTranscriber{transcript: strings.Repeat("a", 10)}
	summarizer := &mockSummarizer{}

	task := newPipelineTask(t, jobs, resolver, transcriber, summarizer, 4)

	require.NoError(t, task.Execute(context.Background()))

	// Stages advance in pipeline order
	assert.Equal(t, []domain.VideoJobStatus{
		domain.VideoJobStatusDownloading,
		domain.VideoJobStatusTranscribing,
		domain.VideoJobStatusSummarizing,
	}, jobs.stages)

	require.NotNil(t, jobs.completed)
	assert.Equal(t, domain.VideoJobStatusCompleted, jobs.completed.Status)
	assert.Equal(t, "How Compilers Work", jobs.completed.Title)
	assert.Equal(t, "A tour of lexing and parsing", jobs.completed.Description)
	assert.Equal(t, "https://example.com/thumb.jpg", jobs.completed.ThumbnailURL)

	// 10 chars at chunk size 4 -> 3 chunks, one card per summary line
	require.Len(t, summarizer.chunks, 3)
	assert.Equal(t, "aaaa", summarizer.chunks[0])
	assert.Equal(t, "aaaa", summarizer.chunks[1])
	assert.Equal(t, "aa", summarizer.chunks[2])

	require.Len(t, jobs.completed.Flashcards, 3)
	assert.Equal(t, "summary 1", jobs.completed.Flashcards[0].Content)
	assert.Equal(t, "summary 3", jobs.completed.Flashcards[2].Content)

	// Audio file is cleaned up after a successful run
	_, err := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFlashcardGenerationTaskJobGone(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	jobs := &mockJobService{job: job, getErr: store.ErrVideoJobNotFound}
	resolver := &mockResolver{}

	task := newPipelineTask(t, jobs, resolver, &mockTranscriber{}, &mockSummarizer{}, 0)

	// A deleted submission cancels the task without error or retries
	require.NoError(t, task.Execute(context.Background()))
	assert.Zero(t, resolver.called)
	assert.Empty(t, jobs.stages)
}

func TestFlashcardGenerationTaskAlreadyCompleted(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	job.Status = domain.VideoJobStatusCompleted

	jobs := &mockJobService{job: job}
	resolver := &mockResolver{}

	task := newPipelineTask(t, jobs, resolver, &mockTranscriber{}, &mockSummarizer{}, 0)

	require.NoError(t, task.Execute(context.Background()))
	assert.Zero(t, resolver.called)
}

func TestFlashcardGenerationTaskVideoNotFound(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	jobs := &mockJobService{job: job}
	resolver := &mockResolver{err: fmt.Errorf("%w: gone", media.ErrVideoNotFound)}

	task := newPipelineTask(t, jobs, resolver, &mockTranscriber{}, &mockSummarizer{}, 0)

	err := task.Execute(context.Background())
	require.Error(t, err)

	// Unavailable videos fail permanently, not transiently
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, job.ID, jobs.failedJobID)
	assert.Equal(t, "video not found or unavailable", jobs.failDetail)
}

func TestFlashcardGenerationTaskTranscriptionTransient(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	audioPath := writeTempAudio(t)

	jobs := &mockJobService{job: job}
	resolver := &mockResolver{res: &media.Resolution{Title: "t", AudioPath: audioPath}}
	transcriber := &mockTranscriber{err: errors.New("provider timeout")}

	task := newPipelineTask(t, jobs, resolver, transcriber, &mockSummarizer{}, 0)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)

	// The job is not failed; the runner owns the retry decision
	assert.Empty(t, jobs.failDetail)

	// Audio is cleaned up on failure paths too
	_, statErr := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFlashcardGenerationTaskSummarizationBlocked(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	audioPath := writeTempAudio(t)

	jobs := &mockJobService{job: job}
	resolver := &mockResolver{res: &media.Resolution{Title: "t", AudioPath: audioPath}}
	transcriber := &mockTranscriber{transcript: "some transcript"}
	summarizer := &mockSummarizer{err: summarization.ErrContentBlocked}

	task := newPipelineTask(t, jobs, resolver, transcriber, summarizer, 0)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, "summarization rejected the transcript content", jobs.failDetail)
}

func TestFlashcardGenerationTaskSummarizationTransient(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	audioPath := writeTempAudio(t)

	jobs := &mockJobService{job: job}
	resolver := &mockResolver{res: &media.Resolution{Title: "t", AudioPath: audioPath}}
	transcriber := &mockTranscriber{transcript: "some transcript"}
	summarizer := &mockSummarizer{err: fmt.Errorf("%w: rate limited", summarization.ErrTransientFailure)}

	task := newPipelineTask(t, jobs, resolver, transcriber, summarizer, 0)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Empty(t, jobs.failDetail)
}

func TestFlashcardGenerationTaskAbandonFailsJob(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	jobs := &mockJobService{job: job}

	task := newPipelineTask(t, jobs, &mockResolver{}, &mockTranscriber{}, &mockSummarizer{}, 0)
	task.RecordAttempt()
	task.RecordAttempt()
	task.RecordAttempt()

	task.Abandon(context.Background(), errors.New("provider down"))

	assert.Equal(t, job.ID, jobs.failedJobID)
	assert.Contains(t, jobs.failDetail, "processing failed after 3 attempts")
}

func TestFlashcardGenerationTaskRehydrationKeepsID(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	jobs := &mockJobService{job: job}

	factory := NewFlashcardGenerationTaskFactory(
		jobs, &mockResolver{}, &mockTranscriber{}, &mockSummarizer{}, 0, slog.Default(),
	)

	original, err := factory.CreateTask(job.OwnerID, job.VideoID)
	require.NoError(t, err)

	rehydrated, err := factory.RehydrateTask(original.ID(), original.Type(), original.Payload())
	require.NoError(t, err)

	assert.Equal(t, original.ID(), rehydrated.ID())
	assert.Equal(t, TaskTypeFlashcardGeneration, rehydrated.Type())
	assert.JSONEq(t, string(original.Payload()), string(rehydrated.Payload()))
}

func TestFlashcardGenerationTaskRehydrationRejectsUnknownType(t *testing.T) {
	t.Parallel()

	job := newTestJob(t)
	jobs := &mockJobService{job: job}

	factory := NewFlashcardGenerationTaskFactory(
		jobs, &mockResolver{}, &mockTranscriber{}, &mockSummarizer{}, 0, slog.Default(),
	)

	_, err := factory.RehydrateTask(uuid.New(), "unknown_type", []byte(`{}`))
	require.Error(t, err)
}
