package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrServerOffline indicates the API is unreachable
	ErrServerOffline = errors.New("jewgo api is unreachable")

	// ErrAuthFailed indicates the session token is missing or invalid
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrRateLimited indicates the API answered 429
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidItem indicates a listing failed validation at the parse boundary
	ErrInvalidItem = errors.New("invalid listing")

	// ErrPermissionDenied indicates location permission was refused
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrPositionUnavailable indicates no fix could be obtained
	ErrPositionUnavailable = errors.New("location unavailable")

	// ErrTimeout indicates a location request timed out
	ErrTimeout = errors.New("location request timed out")
)
