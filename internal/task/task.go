package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeFlashcardGeneration represents the task type for generating
	// flashcards from a submitted video
	TaskTypeFlashcardGeneration = "flashcard_generation"
)

// ErrTransient wraps failures that are expected to resolve on retry, such
// as network problems or provider rate limits. The runner re-enqueues
// tasks whose Execute returns an error matching this sentinel, up to the
// configured attempt ceiling. Any other error is treated as permanent.
var ErrTransient = errors.New("transient task failure")

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// RetryableTask is implemented by tasks that participate in the runner's
// retry cycle. The runner records an attempt before each execution and
// calls Abandon once the attempt ceiling is reached.
type RetryableTask interface {
	Task

	// Attempts returns the number of executions recorded so far
	Attempts() int

	// RecordAttempt increments the execution counter
	RecordAttempt()

	// Abandon marks the underlying work as permanently failed after the
	// retry budget is exhausted. cause is the final execution error.
	Abandon(ctx context.Context, cause error)
}

// TaskRehydrator rebuilds an executable task from its persisted form.
// Stores use this during recovery so requeued rows run the same logic as
// freshly submitted tasks.
type TaskRehydrator interface {
	RehydrateTask(id uuid.UUID, taskType string, payload []byte) (Task, error)
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
