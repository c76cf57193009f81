package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token:
// sub (username), tenant, iat, exp, jti and an optional iss.
type SessionClaims struct {
	Tenant string `json:"tenant"`
	jwt.RegisteredClaims
}

// Validate is run by the jwt parser after the registered claims checks.
func (c SessionClaims) Validate() error {
	if c.Subject == "" {
		return errors.New("token has no subject")
	}
	if c.Tenant == "" {
		return errors.New("token has no tenant")
	}
	return nil
}
