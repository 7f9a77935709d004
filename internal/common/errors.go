// Package common defines shared constants and sentinel errors used across
// client and server layers of MoodNotes. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthenticated = errors.New("user is not logged in")

	// Network-gated actions when connectivity is absent.
	ErrorNoConnection = errors.New("no internet connection")

	// Remote store / blob store failures.
	ErrorBackend = errors.New("backend error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Mood values outside the closed set.
	ErrInvalidMood = errors.New("invalid mood")
)
