package config

import (
	"fmt"
	"time"

	"github.com/jrsteele09/timetrack-auth/token"
)

type AuthConfig interface {
	GetSigningSecret() []byte
	GetTokenTTL() time.Duration
	GetIssuer() string
}

type Auth struct {
	SigningSecret string        `env:"AUTH_SIGNING_SECRET"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"2h"`
	Issuer        string        `env:"AUTH_ISSUER"`
}

var _ AuthConfig = Auth{}

func (a Auth) GetSigningSecret() []byte {
	return []byte(a.SigningSecret)
}

func (a Auth) GetTokenTTL() time.Duration {
	return a.TokenTTL
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) validate(dev bool) error {
	if a.SigningSecret == "" {
		return fmt.Errorf("AUTH_SIGNING_SECRET is required")
	}
	if !dev && len(a.SigningSecret) < token.MinSecretLength {
		return fmt.Errorf("AUTH_SIGNING_SECRET must be at least %d bytes outside DEV", token.MinSecretLength)
	}
	if a.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", a.TokenTTL)
	}
	return nil
}
