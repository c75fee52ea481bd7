package transcription

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
)

// WhisperTranscriber implements Transcriber by shelling out to a local
// whisper.cpp binary. The binary writes a plain-text transcript next to
// the audio file, which is read back and returned.
type WhisperTranscriber struct {
	binaryPath string
	modelPath  string
	language   string
	logger     *slog.Logger
}

// NewWhisperTranscriber creates a transcriber using the configured
// whisper.cpp binary and model.
func NewWhisperTranscriber(cfg config.WhisperConfig, logger *slog.Logger) (*WhisperTranscriber, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("whisper model path cannot be empty")
	}

	binaryPath := cfg.BinaryPath
	if binaryPath == "" {
		binaryPath = "whisper"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WhisperTranscriber{
		binaryPath: binaryPath,
		modelPath:  cfg.ModelPath,
		language:   language,
		logger:     logger.With(slog.String("component", "whisper_transcriber")),
	}, nil
}

// Ensure WhisperTranscriber implements Transcriber
var _ Transcriber = (*WhisperTranscriber)(nil)

// Transcribe implements Transcriber.
// It runs whisper.cpp with text output and reads the resulting .txt file,
// which is removed before returning.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// -m: model path
	// -f: input audio file
	// -otxt: plain text output
	// -l: force language to prevent hallucination
	// --output-file: output file prefix (whisper appends .txt)
	args := []string{
		"-m", t.modelPath,
		"-f", audioPath,
		"-otxt",
		"-l", t.language,
		"--output-file", outputPrefix,
	}

	cmd := exec.CommandContext(ctx, t.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Info("starting whisper transcription",
		slog.String("audio_path", audioPath))

	if err := cmd.Run(); err != nil {
		t.logger.Error("whisper command failed",
			slog.String("error", err.Error()),
			slog.String("stderr", strings.TrimSpace(stderr.String())))
		return "", fmt.Errorf("%w: whisper exited with error: %v", ErrTranscriptionFailed, err)
	}

	txtPath := outputPrefix + ".txt"
	content, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("%w: transcript file missing: %v", ErrTranscriptionFailed, err)
	}

	if err := os.Remove(txtPath); err != nil {
		t.logger.Warn("failed to remove transcript file",
			slog.String("path", txtPath),
			slog.String("error", err.Error()))
	}

	transcript := strings.TrimSpace(string(content))
	if transcript == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}

	t.logger.Info("whisper transcription completed",
		slog.Int("transcript_length", len(transcript)))
	return transcript, nil
}
