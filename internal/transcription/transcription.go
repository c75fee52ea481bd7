// Package transcription converts downloaded audio files into transcript
// text. It offers a synchronous whisper.cpp transcriber and an
// asynchronous submit-and-poll provider backed by AssemblyAI, driven by a
// bounded poll loop.
package transcription

import (
	"context"
	"errors"
)

// Common errors returned by the transcription package
var (
	// ErrTranscriptionFailed is returned when the provider reports a failed job
	// or the transcriber exits unsuccessfully.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrPollLimitExceeded is returned when an async job does not finish within
	// the configured number of polls.
	ErrPollLimitExceeded = errors.New("transcription did not finish within poll limit")
)

// JobStatus is the state of an asynchronous transcription job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// PollResult is a snapshot of an asynchronous job. Text is only populated
// once Status is JobStatusCompleted. ErrorDetail is only populated when
// Status is JobStatusFailed.
type PollResult struct {
	Status      JobStatus
	Text        string
	ErrorDetail string
}

// Transcriber converts an audio file into transcript text synchronously.
// This is the shape the pipeline consumes; asynchronous providers are
// adapted to it by Poller.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Provider is an asynchronous transcription backend: audio is submitted,
// then the job is polled until it reaches a terminal status.
type Provider interface {
	// Submit uploads the audio file and starts a transcription job,
	// returning the provider-side job ID.
	Submit(ctx context.Context, audioPath string) (string, error)

	// Poll fetches the current state of a previously submitted job.
	Poll(ctx context.Context, jobID string) (*PollResult, error)
}
