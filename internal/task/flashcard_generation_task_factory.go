package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// FlashcardGenerationTaskFactory creates FlashcardGenerationTask instances
type FlashcardGenerationTaskFactory struct {
	jobService  VideoJobService
	resolver    Resolver
	transcriber Transcriber
	summarizer  Summarizer
	chunkSize   int
	logger      *slog.Logger
}

// NewFlashcardGenerationTaskFactory creates a new factory for FlashcardGenerationTasks
func NewFlashcardGenerationTaskFactory(
	jobService VideoJobService,
	resolver Resolver,
	transcriber Transcriber,
	summarizer Summarizer,
	chunkSize int,
	logger *slog.Logger,
) *FlashcardGenerationTaskFactory {
	return &FlashcardGenerationTaskFactory{
		jobService:  jobService,
		resolver:    resolver,
		transcriber: transcriber,
		summarizer:  summarizer,
		chunkSize:   chunkSize,
		logger:      logger.With("component", "flashcard_generation_task_factory"),
	}
}

// CreateTask creates a new FlashcardGenerationTask for the specified owner and video
func (f *FlashcardGenerationTaskFactory) CreateTask(ownerID uuid.UUID, videoID string) (Task, error) {
	task, err := NewFlashcardGenerationTask(
		ownerID,
		videoID,
		f.jobService,
		f.resolver,
		f.transcriber,
		f.summarizer,
		f.chunkSize,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// RehydrateTask implements TaskRehydrator. It rebuilds a task from a
// persisted row, keeping the original task ID so status updates land on
// the right record.
func (f *FlashcardGenerationTaskFactory) RehydrateTask(
	id uuid.UUID,
	taskType string,
	payload []byte,
) (Task, error) {
	if taskType != TaskTypeFlashcardGeneration {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}

	var p flashcardGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	task, err := NewFlashcardGenerationTask(
		p.OwnerID,
		p.VideoID,
		f.jobService,
		f.resolver,
		f.transcriber,
		f.summarizer,
		f.chunkSize,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	task.id = id
	return task, nil
}

// Ensure the factory implements TaskRehydrator
var _ TaskRehydrator = (*FlashcardGenerationTaskFactory)(nil)
