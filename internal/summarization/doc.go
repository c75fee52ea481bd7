// Package summarization turns video transcripts into flashcard text.
// It provides transcript chunking, flashcard parsing, and Summarizer
// implementations backed by Google Gemini and the Hugging Face
// inference API.
package summarization
