// Package api implements the HTTP handlers for the service. Handlers
// decode and validate requests, delegate to the service layer, and map
// service errors to sanitized HTTP responses.
package api
