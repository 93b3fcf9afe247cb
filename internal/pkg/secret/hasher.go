package secret

import (
	"errors"
	"fmt"

	"github.com/go-auth-nosql/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and compares passwords and one-time tokens with bcrypt.
// It holds no mutable state and is safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, falling back to bcrypt.DefaultCost
// when cost is outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted digest of secret. It never returns an empty digest
// without an error.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
	if len(digest) == 0 {
		return "", fmt.Errorf("empty digest: %w", domain.ErrHashing)
	}
	return string(digest), nil
}

// Compare reports whether secret matches digest. A mismatch is (false, nil);
// a malformed digest or primitive failure is returned as ErrHashing.
func (h *Hasher) Compare(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
}
