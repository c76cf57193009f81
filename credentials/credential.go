package credentials

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the stored secret for one username within one tenant.
// The pair (TenantID, Username) is the lookup key.
type Credential struct {
	TenantID     string `json:"tenant" yaml:"tenant"`
	Username     string `json:"username" yaml:"username"`
	PasswordHash string `json:"-" yaml:"password_hash"` // bcrypt output - never serialize to API responses
}

// Matches reports whether password hashes to the stored PasswordHash.
func (c *Credential) Matches(password string) bool {
	if c == nil {
		return false
	}
	return CheckPasswordHash(password, c.PasswordHash)
}

// Validate checks the record carries everything a lookup key and a comparison need.
func (c *Credential) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("tenant is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.PasswordHash == "" {
		return fmt.Errorf("password hash is required for %s/%s", c.TenantID, c.Username)
	}
	if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
		return fmt.Errorf("password hash for %s/%s is not a bcrypt hash: %w", c.TenantID, c.Username, err)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, bcrypt.DefaultCost)
}

// HashPasswordWithCost is HashPassword with an explicit bcrypt work factor.
// Tests use bcrypt.MinCost to stay fast.
func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
