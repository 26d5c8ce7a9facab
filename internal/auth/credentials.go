package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

var (
	// ErrUnknownIdentity is returned when no credential is registered for an identity.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrInvalidKey is returned when the API key does not match.
	ErrInvalidKey = errors.New("invalid api key")
)

// Credentials holds the bcrypt hash of every identity's API key.
type Credentials struct {
	// hashes maps an identity to its bcrypt hash.
	hashes map[domain.Identity][]byte
}

// NewCredentials builds credentials from identity to bcrypt-hash pairs, as
// found in the settings file.
func NewCredentials(hashes map[string]string) (*Credentials, error) {
	c := &Credentials{hashes: make(map[domain.Identity][]byte, len(hashes))}

	for identity, hash := range hashes {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("credential for %q: %w", identity, err)
		}

		c.hashes[domain.Identity(identity)] = []byte(hash)
	}

	return c, nil
}

// Verify checks key against the stored hash for id.
func (c *Credentials) Verify(id domain.Identity, key string) error {
	hash, ok := c.hashes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
		return ErrInvalidKey
	}

	return nil
}

// Len returns the number of registered identities.
func (c *Credentials) Len() int {
	return len(c.hashes)
}

// HashKey returns the bcrypt hash of key for use in the settings file.
func HashKey(key string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}

	return string(hash), nil
}
