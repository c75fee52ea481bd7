package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elvispreakerebi/jotta-backend/internal/events"
	"github.com/google/uuid"
)

// TaskSubmitter accepts tasks for background execution.
// It is implemented by TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn task request events into flashcard generation tasks and hand
// them to the runner.
type TaskFactoryEventHandler struct {
	taskFactory *FlashcardGenerationTaskFactory
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory *FlashcardGenerationTaskFactory,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
// Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeFlashcardGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload flashcardGenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.OwnerID == uuid.Nil || payload.VideoID == "" {
		h.logger.Error("invalid task request payload",
			"owner_id", payload.OwnerID,
			"video_id", payload.VideoID,
			"event_id", event.ID)
		return fmt.Errorf("invalid task request payload")
	}

	task, err := h.taskFactory.CreateTask(payload.OwnerID, payload.VideoID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"video_id", payload.VideoID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"video_id", payload.VideoID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"video_id", payload.VideoID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
