// Package auth verifies tenant-scoped credentials and issues and verifies
// the signed session tokens that stand in for them.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/timetrack-auth/credentials"
	"github.com/jrsteele09/timetrack-auth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service authenticates credentials against a credentials.Repo and
// verifies the session tokens it issues. It holds no mutable state.
type Service struct {
	repo   credentials.Repo
	tokens *token.Manager
}

// NewService wires a Service. Both dependencies are required.
func NewService(repo credentials.Repo, tokens *token.Manager) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] credential repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
	}, nil
}

// Authenticate checks req against the stored credential and mints a session token.
//
// Unknown (tenant, username) pairs and wrong passwords both return
// ErrInvalidCredentials. Store failures, including a cancelled ctx, return
// an error matching ErrStoreUnavailable and the underlying cause.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*Session, error) {
	if req.TenantID == "" || req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	cred, err := s.repo.Lookup(ctx, req.TenantID, req.Username)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) && ctx.Err() == nil {
			log.Debug().Str("tenant", req.TenantID).Msg("login rejected: unknown user")
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("tenant", req.TenantID).Msg("credential lookup failed")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !cred.Matches(req.Password) {
		log.Debug().Str("tenant", req.TenantID).Msg("login rejected: password mismatch")
		return nil, ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(req.Username, req.TenantID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Authenticate] issuing session token")
	}

	return &Session{
		Token:     issued.Token,
		TokenType: TokenTypeBearer,
		Subject:   req.Username,
		TenantID:  req.TenantID,
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Verify checks the signature and expiry of rawToken and returns its principal.
// It never consults the credential store.
func (s *Service) Verify(rawToken string) (*Principal, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}

	principal := &Principal{
		Subject:  claims.Subject,
		TenantID: claims.Tenant,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return principal, nil
}

// VerifyForTenant is Verify restricted to tokens issued for tenantID.
// A valid token for any other tenant is ErrInvalidToken.
func (s *Service) VerifyForTenant(rawToken, tenantID string) (*Principal, error) {
	principal, err := s.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	if principal.TenantID != tenantID {
		return nil, fmt.Errorf("%w: token not issued for this tenant", ErrInvalidToken)
	}
	return principal, nil
}

// TokenTTL returns the lifetime of issued tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
