package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for specific conditions; the API layer maps
// them to HTTP status codes.
var (
	// ErrInvalidDeadlineFilter indicates an unrecognized deadline filter value.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidDeadlineFilter = errors.New("invalid deadline filter")

	// ErrInvalidStatus indicates an unrecognized task status value.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrCSVGeneration indicates the CSV export could not be serialized.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrCSVGeneration = errors.New("failed to generate CSV export")
)
