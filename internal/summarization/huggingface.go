package summarization

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
)

// defaultHuggingFaceBaseURL is the hosted inference API endpoint prefix.
const defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models/"

// HuggingFaceSummarizer implements the Summarizer interface against the
// Hugging Face hosted inference API.
type HuggingFaceSummarizer struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewHuggingFaceSummarizer creates a summarizer backed by the Hugging Face
// inference API.
// Returns ErrInvalidConfig if the API key or model is missing.
func NewHuggingFaceSummarizer(
	logger *slog.Logger,
	cfg config.SummarizationConfig,
) (*HuggingFaceSummarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.HuggingFace.APIKey == "" {
		return nil, fmt.Errorf("%w: hugging face API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.HuggingFace.Model == "" {
		return nil, fmt.Errorf("%w: hugging face model cannot be empty", ErrInvalidConfig)
	}

	return &HuggingFaceSummarizer{
		logger:     logger.With(slog.String("component", "huggingface_summarizer")),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     cfg.HuggingFace.APIKey,
		model:      cfg.HuggingFace.Model,
		baseURL:    defaultHuggingFaceBaseURL,
	}, nil
}

// Ensure HuggingFaceSummarizer implements Summarizer
var _ Summarizer = (*HuggingFaceSummarizer)(nil)

// summaryRequest is the inference API request body.
type summaryRequest struct {
	Inputs string `json:"inputs"`
}

// summaryResponse is one element of the inference API response array.
type summaryResponse struct {
	SummaryText string `json:"summary_text"`
}

// Summarize implements Summarizer.
// A 429 or 5xx response is transient; other non-200 responses are permanent.
func (s *HuggingFaceSummarizer) Summarize(ctx context.Context, chunk string) (string, error) {
	if chunk == "" {
		return "", fmt.Errorf("%w: empty chunk", ErrInvalidResponse)
	}

	body, err := json.Marshal(summaryRequest{Inputs: chunk})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrSummarizationFailed, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+s.model,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", ErrSummarizationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close response body", slog.String("error", err.Error()))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrTransientFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to parsing below.
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		// Rate limits and model cold starts resolve on retry.
		return "", fmt.Errorf("%w: inference API returned %d", ErrTransientFailure, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: inference API returned %d: %s",
			ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var results []summaryResponse
	if err := json.Unmarshal(respBody, &results); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrInvalidResponse, err)
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", fmt.Errorf("%w: empty summary in response", ErrInvalidResponse)
	}

	return results[0].SummaryText, nil
}
