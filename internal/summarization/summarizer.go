package summarization

import "context"

// Summarizer produces a concise summary of a single transcript chunk.
// Implementations must treat each call independently; chunk ordering is
// the caller's concern.
type Summarizer interface {
	// Summarize returns flashcard-oriented summary text for the given
	// transcript chunk. The chunk is expected to be at most the configured
	// chunk size.
	Summarize(ctx context.Context, chunk string) (string, error)
}
