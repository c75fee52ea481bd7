// Package media resolves YouTube video IDs into metadata and a locally
// downloaded audio file, using the yt-dlp binary.
package media

import (
	"context"
	"errors"
)

// Common errors returned by the media package
var (
	// ErrVideoNotFound is returned when the video ID does not resolve to an
	// existing, accessible video. This is a permanent failure.
	ErrVideoNotFound = errors.New("video not found or unavailable")

	// ErrResolveFailed is returned for other resolution failures, such as
	// network problems or yt-dlp crashes. These may succeed on retry.
	ErrResolveFailed = errors.New("failed to resolve video")
)

// Resolution is the result of resolving a video: display metadata plus the
// path of the downloaded audio file. The caller owns the audio file and is
// responsible for removing it when done.
type Resolution struct {
	Title        string
	Description  string
	ThumbnailURL string
	AudioPath    string
}

// Resolver fetches video metadata and downloads the audio track.
// Resolve is idempotent: resolving the same video twice yields equivalent
// metadata and a fresh audio file.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*Resolution, error)
}
