// Package common defines shared constants and sentinel errors used across
// the server and the operator CLI. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")
	ErrorLimitReached = errors.New("plan limit reached")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Credential key lifecycle errors.
	ErrTokenRevoked         = errors.New("credential key revoked")
	ErrTokenAlreadyRedeemed = errors.New("credential key already redeemed")

	// Subscription / payment errors.
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrInvalidSignature     = errors.New("invalid signature")

	// Upstream (third-party API) errors.
	ErrUpstream = errors.New("upstream service error")
)

// Validationf builds an error that matches ErrorValidation and carries a
// human-readable reason, e.g. "validation error: name is required".
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrorValidation}, args...)...)
}
