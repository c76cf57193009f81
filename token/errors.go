package token

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, disallowed
	// algorithms and missing claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for a correctly signed token whose exp has passed.
	ErrTokenExpired = errors.New("token expired")
)
