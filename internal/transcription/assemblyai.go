package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
)

// AssemblyAIProvider implements the Provider interface against the
// AssemblyAI REST API: the audio file is uploaded, a transcript job is
// created, and the job is then polled by ID.
type AssemblyAIProvider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

// NewAssemblyAIProvider creates a provider for the AssemblyAI API.
func NewAssemblyAIProvider(cfg config.AssemblyAIConfig, logger *slog.Logger) (*AssemblyAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assemblyai API key cannot be empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AssemblyAIProvider{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		logger:     logger.With(slog.String("component", "assemblyai_provider")),
	}, nil
}

// Ensure AssemblyAIProvider implements Provider
var _ Provider = (*AssemblyAIProvider)(nil)

// uploadResponse is the response body of POST /v2/upload.
type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// transcriptRequest is the request body of POST /v2/transcript.
type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

// transcriptResponse is the response body of transcript creation and polling.
type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Submit implements Provider.Submit.
// It uploads the local audio file, then creates a transcript job for it.
func (p *AssemblyAIProvider) Submit(ctx context.Context, audioPath string) (string, error) {
	uploadURL, err := p.upload(ctx, audioPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(transcriptRequest{AudioURL: uploadURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript request: %w", err)
	}

	var created transcriptResponse
	if err := p.doJSON(ctx, http.MethodPost, "/v2/transcript", bytes.NewReader(body), &created); err != nil {
		return "", fmt.Errorf("failed to create transcript job: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: no job ID in create response", ErrTranscriptionFailed)
	}

	p.logger.Info("assemblyai transcript job created",
		slog.String("job_id", created.ID))
	return created.ID, nil
}

// Poll implements Provider.Poll.
func (p *AssemblyAIProvider) Poll(ctx context.Context, jobID string) (*PollResult, error) {
	var resp transcriptResponse
	if err := p.doJSON(ctx, http.MethodGet, "/v2/transcript/"+jobID, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch transcript job: %w", err)
	}

	switch resp.Status {
	case "queued":
		return &PollResult{Status: JobStatusQueued}, nil
	case "processing":
		return &PollResult{Status: JobStatusProcessing}, nil
	case "completed":
		return &PollResult{Status: JobStatusCompleted, Text: resp.Text}, nil
	case "error":
		return &PollResult{Status: JobStatusFailed, ErrorDetail: resp.Error}, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrTranscriptionFailed, resp.Status)
	}
}

// upload streams the audio file to the upload endpoint and returns the
// temporary URL AssemblyAI assigns to it.
func (p *AssemblyAIProvider) upload(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			p.logger.Warn("failed to close audio file", slog.String("error", err.Error()))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/upload", file)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer p.closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: upload returned %d: %s",
			ErrTranscriptionFailed, resp.StatusCode, string(respBody))
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if uploaded.UploadURL == "" {
		return "", fmt.Errorf("%w: empty upload URL", ErrTranscriptionFailed)
	}

	return uploaded.UploadURL, nil
}

// doJSON performs an API request with auth headers and decodes the JSON response.
func (p *AssemblyAIProvider) doJSON(
	ctx context.Context,
	method, path string,
	body io.Reader,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer p.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: API returned %d: %s",
			ErrTranscriptionFailed, resp.StatusCode, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *AssemblyAIProvider) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		p.logger.Warn("failed to close response body", slog.String("error", err.Error()))
	}
}
