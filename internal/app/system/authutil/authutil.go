// Package authutil hashes and verifies passwords with bcrypt.
//
// The plaintext password is never stored or logged; only the digest
// returned by Hash is persisted as users.password_hash.
package authutil

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// ErrInvalidCost is returned by NewHasher for costs bcrypt does not accept.
var ErrInvalidCost = fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)

// Hasher computes and checks password digests at a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or ErrInvalidCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, ErrInvalidCost
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt digest of password.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed digests never match.
func (h *Hasher) Verify(password, digest string) bool {
	return CheckPassword(password, digest)
}

// CheckPassword compares a plaintext password against a bcrypt digest.
func CheckPassword(password, digest string) bool {
	// Mismatch and malformed-digest errors both mean "no".
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
