package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// MinSecretLength is the shortest HMAC secret accepted outside development.
const MinSecretLength = 32

// Signer signs session claims and supplies the key that verifies them.
type Signer interface {
	// Sign creates a compact JWS from claims
	Sign(claims jwt.Claims) (string, error)

	// VerificationKey returns the key for a parsed but unverified token
	VerificationKey(token *jwt.Token) (any, error)

	// SigningMethod returns the JWT signing method used
	SigningMethod() jwt.SigningMethod
}

var _ Signer = (*HMACSigner)(nil)

// HMACSigner implements Signer using symmetric HMAC-SHA256.
// The secret is copied on construction and never changes afterwards.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates an HS256 signer. An empty secret is rejected.
func NewHMACSigner(secret []byte) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("[token.NewHMACSigner] signing secret is empty")
	}
	return &HMACSigner{
		secret: append([]byte(nil), secret...),
	}, nil
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACSigner) VerificationKey(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
