package task

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a minimal Task implementation for queue tests.
type stubTask struct {
	id uuid.UUID
}

func newStubTask() *stubTask {
	return &stubTask{id: uuid.New()}
}

func (t *stubTask) ID() uuid.UUID              { return t.id }
func (t *stubTask) Type() string               { return "stub" }
func (t *stubTask) Payload() []byte            { return nil }
func (t *stubTask) Status() TaskStatus         { return TaskStatusPending }
func (t *stubTask) Execute(context.Context) error { return nil }

func TestTaskQueueEnqueueAndConsume(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, slog.Default())
	first := newStubTask()
	second := newStubTask()

	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))

	ch := queue.GetChannel()
	assert.Equal(t, first.ID(), (<-ch).ID())
	assert.Equal(t, second.ID(), (<-ch).ID())
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())

	require.NoError(t, queue.Enqueue(newStubTask()))

	err := queue.Enqueue(newStubTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueClosed(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())
	queue.Close()

	err := queue.Enqueue(newStubTask())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing again must not panic
	queue.Close()
}
