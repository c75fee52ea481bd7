package summarization_test

import (
	"strings"
	"testing"

	"github.com/elvispreakerebi/jotta-backend/internal/summarization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		transcript string
		chunkSize  int
		wantChunks []string
	}{
		{
			name:       "empty transcript yields no chunks",
			transcript: "",
			chunkSize:  10,
			wantChunks: nil,
		},
		{
			name:       "shorter than chunk size is a single chunk",
			transcript: "hello",
			chunkSize:  10,
			wantChunks: []string{"hello"},
		},
		{
			name:       "exact multiple splits evenly",
			transcript: "aaabbbccc",
			chunkSize:  3,
			wantChunks: []string{"aaa", "bbb", "ccc"},
		},
		{
			name:       "remainder goes in final chunk",
			transcript: "aaabbbcc",
			chunkSize:  3,
			wantChunks: []string{"aaa", "bbb", "cc"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := summarization.SplitChunks(tc.transcript, tc.chunkSize)
			assert.Equal(t, tc.wantChunks, got)
		})
	}
}

func TestSplitChunksDefaultSize(t *testing.T) {
	t.Parallel()

	transcript := strings.Repeat("x", 4000)

	chunks := summarization.SplitChunks(transcript, 0)

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], summarization.DefaultChunkSize)
	assert.Len(t, chunks[1], 4000-summarization.DefaultChunkSize)
}

func TestSplitChunksPreservesContent(t *testing.T) {
	t.Parallel()

	transcript := strings.Repeat("the quick brown fox jumps over the lazy dog ", 200)

	chunks := summarization.SplitChunks(transcript, 3500)

	assert.Equal(t, transcript, strings.Join(chunks, ""))
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.Len(t, chunk, 3500, "chunk %d", i)
	}
}

func TestJoinSummaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", summarization.JoinSummaries(nil))
	assert.Equal(t, "one", summarization.JoinSummaries([]string{"one"}))
	assert.Equal(t, "one\ntwo\nthree", summarization.JoinSummaries([]string{"one", "two", "three"}))
}

func TestParseFlashcards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary string
		want    []string
	}{
		{
			name:    "empty summary yields no cards",
			summary: "",
			want:    []string{},
		},
		{
			name:    "one card per line",
			summary: "first fact\nsecond fact\nthird fact",
			want:    []string{"first fact", "second fact", "third fact"},
		},
		{
			name:    "blank lines are skipped",
			summary: "first fact\n\n  \nsecond fact\n",
			want:    []string{"first fact", "second fact"},
		},
		{
			name:    "surrounding whitespace is trimmed",
			summary: "  padded fact  \n\ttabbed fact\t",
			want:    []string{"padded fact", "tabbed fact"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cards := summarization.ParseFlashcards(tc.summary)

			require.Len(t, cards, len(tc.want))
			for i, content := range tc.want {
				assert.Equal(t, content, cards[i].Content)
			}
		})
	}
}
