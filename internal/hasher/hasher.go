// Package hasher provides the credential-verification service used for user
// passwords. The rest of the application depends only on the PasswordHasher
// interface, so the concrete algorithm stays replaceable.
package hasher

import "golang.org/x/crypto/bcrypt"

// PasswordHasher derives opaque credential hashes from plaintext passwords and
// verifies plaintext passwords against previously derived hashes.
type PasswordHasher interface {
	Derive(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BCryptHasher implements PasswordHasher on top of golang.org/x/crypto/bcrypt.
type BCryptHasher struct {
	cost int
}

// New returns a BCryptHasher with the given cost. A cost below
// bcrypt.MinCost selects bcrypt.DefaultCost.
func New(cost int) *BCryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	return &BCryptHasher{cost: cost}
}

// Derive hashes the given plaintext password.
func (h *BCryptHasher) Derive(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func (h *BCryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
