package summarization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
	"google.golang.org/genai"
)

// summaryPrompt asks the model for flashcard-ready output: one standalone
// fact or concept per line, no numbering or markdown decoration.
const summaryPrompt = `You are an expert at distilling educational content into flashcards.
Summarize the key facts and concepts from the transcript excerpt below.

Requirements:
- Write one self-contained fact or concept per line
- Each line must make sense on its own, without the transcript
- No numbering, bullets, headings, or markdown formatting
- Skip filler, greetings, and sponsor messages

Transcript excerpt:
---
%s
---`

// GeminiSummarizer implements the Summarizer interface using Google's
// Gemini API. Transient API failures are retried with exponential backoff
// and jitter; safety blocks and malformed responses are permanent.
type GeminiSummarizer struct {
	logger *slog.Logger
	client *genai.Client
	model  string

	maxRetries int
	baseDelay  time.Duration
}

// NewGeminiSummarizer creates a new instance of GeminiSummarizer with the
// provided configuration.
// Returns ErrInvalidConfig if the API key or model name is missing.
func NewGeminiSummarizer(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.SummarizationConfig,
) (*GeminiSummarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.Gemini.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	return &GeminiSummarizer{
		logger:     logger.With(slog.String("component", "gemini_summarizer")),
		client:     client,
		model:      cfg.Gemini.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(baseDelaySeconds) * time.Second,
	}, nil
}

// Ensure GeminiSummarizer implements Summarizer
var _ Summarizer = (*GeminiSummarizer)(nil)

// Summarize implements Summarizer.
func (s *GeminiSummarizer) Summarize(ctx context.Context, chunk string) (string, error) {
	if chunk == "" {
		return "", fmt.Errorf("%w: empty chunk", ErrInvalidResponse)
	}

	prompt := fmt.Sprintf(summaryPrompt, chunk)
	return s.callWithRetry(ctx, prompt)
}

// callWithRetry makes a call to the Gemini API with exponential backoff
// retry logic. Permanent errors (content blocked, malformed response) are
// returned immediately without retrying.
func (s *GeminiSummarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		s.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", s.maxRetries+1)

		text, err := s.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}

		s.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if IsPermanent(err) {
			return "", err
		}

		if attempt >= s.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				ErrTransientFailure, s.maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoff := float64(s.baseDelay) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitterFactor)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs a single Gemini call and classifies the outcome.
func (s *GeminiSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		// API-level failures are assumed transient (rate limits, timeouts)
		return "", fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	if text == "" {
		return "", fmt.Errorf("%w: empty response text", ErrInvalidResponse)
	}

	return text, nil
}
