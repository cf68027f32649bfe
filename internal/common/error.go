// Package common defines shared constants and sentinel errors used across
// client and server layers of trailfield. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Upload failures that retrying cannot fix without user action.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPayloadTooLarge  = errors.New("payload too large")

	// Validation errors (programmer-error class; malformed input).
	ErrMalformedPayload = errors.New("malformed payload")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
