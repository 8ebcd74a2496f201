package auth

import "errors"

// Sentinel errors for token verification.
var (
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrInvalidToken is returned for malformed tokens, bad signatures,
	// and issuer or audience mismatches.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired is returned when the token's exp claim has passed.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenNotYetValid is returned when the token's nbf claim is in
	// the future.
	ErrTokenNotYetValid = errors.New("auth: token not yet valid")

	// ErrKeyNotFound is returned when no signing key matches the token's
	// key ID.
	ErrKeyNotFound = errors.New("auth: signing key not found")
)
