package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/elvispreakerebi/jotta-backend/internal/events"
	"github.com/elvispreakerebi/jotta-backend/internal/service"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/elvispreakerebi/jotta-backend/internal/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopDriver is a database/sql driver whose transactions are no-ops, so
// transactional service paths can run without a real database.
type noopDriver struct{}

type noopConn struct{}

type noopTx struct{}

func (noopDriver) Open(name string) (driver.Conn, error) { return noopConn{}, nil }

func (noopConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported")
}
func (noopConn) Close() error              { return nil }
func (noopConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var registerDriverOnce sync.Once

func newNoopDB(t *testing.T) *sql.DB {
	t.Helper()
	registerDriverOnce.Do(func() {
		sql.Register("service-test-noop", noopDriver{})
	})
	db, err := sql.Open("service-test-noop", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeJobRepo is an in-memory VideoJobRepository keyed by owner and video.
type fakeJobRepo struct {
	mu   sync.Mutex
	db   *sql.DB
	jobs map[string]*domain.VideoJob
}

func newFakeJobRepo(db *sql.DB) *fakeJobRepo {
	return &fakeJobRepo{db: db, jobs: make(map[string]*domain.VideoJob)}
}

func repoKey(ownerID uuid.UUID, videoID string) string {
	return ownerID.String() + "/" + videoID
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.VideoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repoKey(job.OwnerID, job.VideoID)
	if _, exists := r.jobs[key]; exists {
		return store.ErrVideoJobExists
	}
	r.jobs[key] = job
	return nil
}

func (r *fakeJobRepo) GetByOwnerAndVideo(
	ctx context.Context,
	ownerID uuid.UUID,
	videoID string,
) (*domain.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[repoKey(ownerID, videoID)]
	if !ok {
		return nil, store.ErrVideoJobNotFound
	}
	return job, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *domain.VideoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repoKey(job.OwnerID, job.VideoID)
	if _, ok := r.jobs[key]; !ok {
		return store.ErrVideoJobNotFound
	}
	r.jobs[key] = job
	return nil
}

func (r *fakeJobRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.VideoJobStatus,
	errorDetail string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.ID == id {
			job.Status = status
			job.ErrorDetail = errorDetail
			return nil
		}
	}
	return store.ErrVideoJobNotFound
}

func (r *fakeJobRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []*domain.VideoJob
	for _, job := range r.jobs {
		if job.OwnerID == ownerID {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (r *fakeJobRepo) SearchByTitle(
	ctx context.Context,
	ownerID uuid.UUID,
	query string,
) ([]*domain.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []*domain.VideoJob
	for _, job := range r.jobs {
		if job.OwnerID == ownerID &&
			strings.Contains(strings.ToLower(job.Title), strings.ToLower(query)) {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, job := range r.jobs {
		if job.OwnerID == ownerID && job.ID == id {
			delete(r.jobs, key)
			return nil
		}
	}
	return store.ErrVideoJobNotFound
}

func (r *fakeJobRepo) WithTx(tx *sql.Tx) service.VideoJobRepository { return r }

func (r *fakeJobRepo) DB() *sql.DB { return r.db }

// captureEmitter records emitted events.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
}

func (e *captureEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *captureEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func newTestService(t *testing.T) (service.VideoJobService, *fakeJobRepo, *captureEmitter) {
	t.Helper()
	repo := newFakeJobRepo(newNoopDB(t))
	emitter := &captureEmitter{}
	svc, err := service.NewVideoJobService(repo, emitter, slog.Default())
	require.NoError(t, err)
	return svc, repo, emitter
}

func TestSubmitVideoCreatesJobAndEmitsEvent(t *testing.T) {
	svc, repo, emitter := newTestService(t)
	ownerID := uuid.New()

	job, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")

	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, domain.VideoJobStatusPending, job.Status)
	assert.Equal(t, ownerID, job.OwnerID)

	stored, err := repo.GetByOwnerAndVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)

	require.Equal(t, 1, emitter.count())
	event := emitter.events[0]
	assert.Equal(t, task.TaskTypeFlashcardGeneration, event.Type)

	var payload struct {
		OwnerID uuid.UUID `json:"owner_id"`
		VideoID string    `json:"video_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, ownerID, payload.OwnerID)
	assert.Equal(t, "dQw4w9WgXcQ", payload.VideoID)
}

func TestSubmitVideoDuplicateNonFailedJob(t *testing.T) {
	svc, _, emitter := newTestService(t)
	ownerID := uuid.New()

	_, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)

	for _, status := range []domain.VideoJobStatus{
		domain.VideoJobStatusPending,
		domain.VideoJobStatusDownloading,
		domain.VideoJobStatusTranscribing,
		domain.VideoJobStatusSummarizing,
		domain.VideoJobStatusCompleted,
	} {
		job, getErr := svc.GetVideoJob(context.Background(), ownerID, "dQw4w9WgXcQ")
		require.NoError(t, getErr)
		job.Status = status

		_, err = svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
		assert.ErrorIs(t, err, service.ErrDuplicateVideoJob, "status %s", status)
	}

	// Only the first submission emitted an event
	assert.Equal(t, 1, emitter.count())
}

func TestSubmitVideoRetriesFailedJob(t *testing.T) {
	svc, repo, emitter := newTestService(t)
	ownerID := uuid.New()

	first, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)

	// Simulate pipeline failure
	stored, err := repo.GetByOwnerAndVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	stored.Status = domain.VideoJobStatusFailed
	stored.ErrorDetail = "processing failed after 5 attempts"
	stored.Flashcards = []domain.Flashcard{{Content: "stale"}}

	retried, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)

	// Same job row, reset to pending with stale state cleared
	assert.Equal(t, first.ID, retried.ID)
	assert.Equal(t, domain.VideoJobStatusPending, retried.Status)
	assert.Empty(t, retried.ErrorDetail)
	assert.Empty(t, retried.Flashcards)

	assert.Equal(t, 2, emitter.count())
}

func TestSubmitVideoDifferentOwnersSameVideo(t *testing.T) {
	svc, _, emitter := newTestService(t)

	_, err := svc.SubmitVideo(context.Background(), uuid.New(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	_, err = svc.SubmitVideo(context.Background(), uuid.New(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, 2, emitter.count())
}

func TestSubmitVideoInvalidVideoID(t *testing.T) {
	svc, _, emitter := newTestService(t)
	ownerID := uuid.New()

	tests := []struct {
		name    string
		videoID string
	}{
		{"empty", ""},
		{"whitespace", "abc def"},
		{"tab", "abc\tdef"},
		{"too long", strings.Repeat("a", 65)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitVideo(context.Background(), ownerID, tc.videoID)
			assert.ErrorIs(t, err, service.ErrInvalidVideoID)
		})
	}

	assert.Zero(t, emitter.count())
}

func TestGetVideoJobNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetVideoJob(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, service.ErrVideoJobNotFound)
}

func TestDeleteVideoJob(t *testing.T) {
	svc, _, _ := newTestService(t)
	ownerID := uuid.New()

	_, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVideoJob(context.Background(), ownerID, "dQw4w9WgXcQ"))

	_, err = svc.GetVideoJob(context.Background(), ownerID, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, service.ErrVideoJobNotFound)

	err = svc.DeleteVideoJob(context.Background(), ownerID, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, service.ErrVideoJobNotFound)
}

func TestSearchVideoJobs(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()

	_, err := svc.SubmitVideo(context.Background(), ownerID, "video-one")
	require.NoError(t, err)
	_, err = svc.SubmitVideo(context.Background(), ownerID, "video-two")
	require.NoError(t, err)

	jobOne, err := repo.GetByOwnerAndVideo(context.Background(), ownerID, "video-one")
	require.NoError(t, err)
	jobOne.Title = "Intro to Compilers"

	jobTwo, err := repo.GetByOwnerAndVideo(context.Background(), ownerID, "video-two")
	require.NoError(t, err)
	jobTwo.Title = "Cooking Pasta"

	results, err := svc.SearchVideoJobs(context.Background(), ownerID, "compilers")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Intro to Compilers", results[0].Title)
}

func TestMarkStageAndFailJob(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()

	job, err := svc.SubmitVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)

	require.NoError(t, svc.MarkStage(context.Background(), job.ID, domain.VideoJobStatusDownloading))
	stored, err := repo.GetByOwnerAndVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, domain.VideoJobStatusDownloading, stored.Status)

	require.NoError(t, svc.FailJob(context.Background(), job.ID, "processing failed after 5 attempts"))
	stored, err = repo.GetByOwnerAndVideo(context.Background(), ownerID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, domain.VideoJobStatusFailed, stored.Status)
	assert.Equal(t, "processing failed after 5 attempts", stored.ErrorDetail)
}
