package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// videoURLPrefix is the canonical watch URL prefix handed to yt-dlp.
const videoURLPrefix = "https://www.youtube.com/watch?v="

// YtdlpResolver implements Resolver by shelling out to the yt-dlp binary.
// Metadata is fetched with --dump-json, then the audio track is extracted
// into the configured temp directory.
type YtdlpResolver struct {
	binaryPath string
	tempDir    string
	logger     *slog.Logger
}

// NewYtdlpResolver creates a resolver using the given yt-dlp binary path
// and temp directory for downloaded audio. The temp directory is created
// if it does not exist.
func NewYtdlpResolver(binaryPath, tempDir string, logger *slog.Logger) (*YtdlpResolver, error) {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if tempDir == "" {
		return nil, fmt.Errorf("temp dir cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &YtdlpResolver{
		binaryPath: binaryPath,
		tempDir:    tempDir,
		logger:     logger.With(slog.String("component", "ytdlp_resolver")),
	}, nil
}

// Ensure YtdlpResolver implements Resolver
var _ Resolver = (*YtdlpResolver)(nil)

// videoMetadata is the subset of yt-dlp's --dump-json output we care about.
type videoMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Resolve implements Resolver.
// It fetches metadata first, then downloads the audio track as mp3.
// Returns ErrVideoNotFound when yt-dlp reports the video as missing,
// private, or otherwise unavailable.
func (r *YtdlpResolver) Resolve(ctx context.Context, videoID string) (*Resolution, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: empty video ID", ErrVideoNotFound)
	}

	url := videoURLPrefix + videoID

	meta, err := r.fetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}

	audioPath, err := r.downloadAudio(ctx, url, videoID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("video resolved",
		slog.String("video_id", videoID),
		slog.String("audio_path", audioPath))

	return &Resolution{
		Title:        meta.Title,
		Description:  meta.Description,
		ThumbnailURL: meta.Thumbnail,
		AudioPath:    audioPath,
	}, nil
}

// fetchMetadata runs yt-dlp --dump-json and parses the video metadata.
func (r *YtdlpResolver) fetchMetadata(ctx context.Context, url string) (*videoMetadata, error) {
	cmd := exec.CommandContext(ctx, r.binaryPath,
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		url,
	)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, r.classifyError(err, stderr.String(), "metadata fetch")
	}

	var meta videoMetadata
	if err := json.Unmarshal(out.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("%w: failed to parse yt-dlp metadata: %v", ErrResolveFailed, err)
	}

	return &meta, nil
}

// downloadAudio extracts the audio track to <tempDir>/<videoID>.mp3.
func (r *YtdlpResolver) downloadAudio(ctx context.Context, url, videoID string) (string, error) {
	outputTemplate := filepath.Join(r.tempDir, videoID+".%(ext)s")
	audioPath := filepath.Join(r.tempDir, videoID+".mp3")

	cmd := exec.CommandContext(ctx, r.binaryPath,
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-warnings",
		"-o", outputTemplate,
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", r.classifyError(err, stderr.String(), "audio download")
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: audio file missing after download: %v", ErrResolveFailed, err)
	}

	return audioPath, nil
}

// classifyError maps a yt-dlp failure to ErrVideoNotFound or ErrResolveFailed
// based on the stderr output.
func (r *YtdlpResolver) classifyError(err error, stderr, operation string) error {
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "video unavailable") ||
		strings.Contains(lower, "private video") ||
		strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "is not a valid url") ||
		strings.Contains(lower, "incomplete youtube id") {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, strings.TrimSpace(stderr))
	}

	r.logger.Error("yt-dlp command failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("stderr", strings.TrimSpace(stderr)))

	return fmt.Errorf("%w: %s failed: %v", ErrResolveFailed, operation, err)
}
