package token

import "errors"

// Verification failures. Each is distinct so callers can report the cause.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
	ErrNotYetValid      = errors.New("token is not valid yet")
	ErrInvalidClaims    = errors.New("token claims are invalid")
)
