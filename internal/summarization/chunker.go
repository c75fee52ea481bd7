package summarization

import (
	"strings"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
)

// DefaultChunkSize is the transcript chunk size, in characters, used when
// no explicit size is configured.
const DefaultChunkSize = 3500

// SplitChunks splits the transcript into consecutive chunks of at most
// chunkSize characters. Order is preserved and no characters are dropped;
// the final chunk carries the remainder. An empty transcript yields no
// chunks, and a non-positive chunkSize falls back to DefaultChunkSize.
func SplitChunks(transcript string, chunkSize int) []string {
	if transcript == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	for start := 0; start < len(transcript); start += chunkSize {
		end := start + chunkSize
		if end > len(transcript) {
			end = len(transcript)
		}
		chunks = append(chunks, transcript[start:end])
	}
	return chunks
}

// JoinSummaries concatenates per-chunk summaries with newlines, preserving
// chunk order.
func JoinSummaries(summaries []string) string {
	return strings.Join(summaries, "\n")
}

// ParseFlashcards converts summary text into flashcards: one card per
// non-blank line, in line order. Surrounding whitespace is trimmed.
func ParseFlashcards(summary string) []domain.Flashcard {
	lines := strings.Split(summary, "\n")
	cards := make([]domain.Flashcard, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		cards = append(cards, domain.Flashcard{Content: trimmed})
	}
	return cards
}
