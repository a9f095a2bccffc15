package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt so the cost can be lowered in tests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using the default bcrypt cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// NewPasswordHasherWithCost returns a hasher with a custom cost. Tests use
// bcrypt.MinCost to avoid the per-hash latency of the production cost.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted one-way hash of the plaintext. bcrypt truncates
// input beyond 72 bytes, so longer passwords are rejected outright.
func (p *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func (p *PasswordHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
