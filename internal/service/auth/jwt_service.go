package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the token pairs that protect the video
// submission and retrieval endpoints. Access tokens authorize API calls
// and carry the owner identity that scopes every video job query; refresh
// tokens only mint new pairs via the refresh endpoint.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token's signature, expiry and type,
	// and extracts its claims. Returns ErrExpiredToken, ErrInvalidToken
	// or ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for the user.
	// Refresh tokens outlive access tokens and are accepted only by the
	// refresh endpoint.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token and extracts its claims.
	// Returns ErrExpiredRefreshToken, ErrInvalidRefreshToken or
	// ErrWrongTokenType on failure.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a validated token.
type Claims struct {
	// UserID identifies the account the token was issued for. Handlers
	// use it as the owner ID when creating and querying video jobs.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is "access" or "refresh". Validation rejects a token
	// presented in the wrong context, so a long-lived refresh token can
	// never authorize an API call directly.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
