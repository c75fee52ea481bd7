package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrVideoJobNotFound indicates that the requested video job does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrVideoJobNotFound = errors.New("video job not found")

	// ErrDuplicateVideoJob indicates the owner already has a non-failed job
	// for the submitted video.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateVideoJob = errors.New("video already submitted")

	// ErrInvalidVideoID indicates the submitted video ID is missing or malformed.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidVideoID = errors.New("invalid video ID")
)
