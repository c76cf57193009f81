package auth

import (
	"fmt"
	"time"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "Bearer"

// LoginRequest carries the credentials presented by a caller.
type LoginRequest struct {
	TenantID string `json:"tenant"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// String omits the password so a request can be logged safely.
func (r LoginRequest) String() string {
	return fmt.Sprintf("LoginRequest{tenant=%q username=%q}", r.TenantID, r.Username)
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Subject   string    `json:"subject"`
	TenantID  string    `json:"tenant"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiresIn returns the remaining lifetime relative to now, never negative.
func (s *Session) ExpiresIn(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Principal is the identity carried by a verified token.
type Principal struct {
	Subject   string    `json:"subject"`
	TenantID  string    `json:"tenant"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenID   string    `json:"-"`
}
