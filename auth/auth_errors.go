package auth

import (
	"errors"

	"github.com/jrsteele09/timetrack-auth/token"
)

var (
	// ErrInvalidCredentials is returned for an unknown (tenant, username)
	// and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable wraps a credential store failure. The store's own
	// error stays in the chain.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	ErrInvalidToken = token.ErrInvalidToken
	ErrTokenExpired = token.ErrTokenExpired
)
