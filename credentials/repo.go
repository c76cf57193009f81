package credentials

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record exists for the (tenant, username) pair.
	ErrNotFound = errors.New("credential not found")

	// ErrUnavailable means the backing store could not be reached or queried.
	ErrUnavailable = errors.New("credential store unavailable")
)

// Repo looks up stored credentials by (tenant, username).
//
// Implementations return ErrNotFound for an absent record and wrap every
// other failure with ErrUnavailable, so callers can tell "no such user"
// apart from "store down". Lookups have no side effects and must be safe
// for concurrent use.
type Repo interface {
	Lookup(ctx context.Context, tenantID, username string) (*Credential, error)
}

// Unavailable wraps a backend failure so it matches ErrUnavailable while
// keeping the original cause in the chain.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
