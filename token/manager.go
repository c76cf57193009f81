package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultTTL is the session token lifetime when none is configured.
const DefaultTTL = 2 * time.Hour

// Issued is a freshly minted session token and its validity window.
type Issued struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager mints and parses session tokens with a single signer.
type Manager struct {
	signer  Signer
	ttl     time.Duration
	issuer  string
	nowFunc func() time.Time
	parser  *jwt.Parser
}

type ManagerOption func(*Manager)

func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithIssuer sets the iss claim on issued tokens and requires it on parsed ones.
func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer: signer,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signer.SigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	}
	if m.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(m.issuer))
	}
	m.parser = jwt.NewParser(parserOptions...)

	return m
}

// TTL returns the lifetime given to issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a token for subject within tenantID, valid from now for the TTL.
func (m *Manager) Issue(subject, tenantID string) (*Issued, error) {
	if subject == "" || tenantID == "" {
		return nil, errors.New("[Manager.Issue] subject and tenant are required")
	}

	now := m.nowFunc().UTC().Truncate(jwt.TimePrecision)
	expiresAt := now.Add(m.ttl)
	id := uuid.New().String()

	claims := SessionClaims{
		Tenant: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        id,
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue] signing session token")
	}

	return &Issued{
		Token:     signed,
		ID:        id,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse verifies the signature and then the expiry of rawToken.
// A bad signature is always ErrInvalidToken, even when exp has also passed.
func (m *Manager) Parse(rawToken string) (*SessionClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &SessionClaims{}
	_, err := m.parser.ParseWithClaims(rawToken, claims, m.signer.VerificationKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}
