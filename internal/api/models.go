package api

import (
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SubmitVideoRequest defines the payload for submitting a video for
// flashcard generation.
type SubmitVideoRequest struct {
	VideoID string `json:"video_id" validate:"required,max=64"`
}

// FlashcardResponse represents a single generated flashcard.
type FlashcardResponse struct {
	Content string `json:"content"`
}

// VideoJobResponse represents the response data for a video job.
type VideoJobResponse struct {
	ID           string              `json:"id"`
	VideoID      string              `json:"video_id"`
	Title        string              `json:"title,omitempty"`
	Description  string              `json:"description,omitempty"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	Status       string              `json:"status"`
	ErrorDetail  string              `json:"error_detail,omitempty"`
	Flashcards   []FlashcardResponse `json:"flashcards,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// SubmitVideoResponse is returned when a video is accepted for processing.
type SubmitVideoResponse struct {
	Message string           `json:"message"`
	Job     VideoJobResponse `json:"job"`
}

// videoJobToResponse converts a domain.VideoJob to a VideoJobResponse.
func videoJobToResponse(job *domain.VideoJob) VideoJobResponse {
	resp := VideoJobResponse{
		ID:           job.ID.String(),
		VideoID:      job.VideoID,
		Title:        job.Title,
		Description:  job.Description,
		ThumbnailURL: job.ThumbnailURL,
		Status:       string(job.Status),
		ErrorDetail:  job.ErrorDetail,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
	for _, card := range job.Flashcards {
		resp.Flashcards = append(resp.Flashcards, FlashcardResponse{Content: card.Content})
	}
	return resp
}

// videoJobsToResponse converts a slice of domain jobs to response DTOs.
// It always returns a non-nil slice so list endpoints serialize as [].
func videoJobsToResponse(jobs []*domain.VideoJob) []VideoJobResponse {
	responses := make([]VideoJobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, videoJobToResponse(job))
	}
	return responses
}
