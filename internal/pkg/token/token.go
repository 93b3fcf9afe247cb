package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// secretBytes keeps secret+ULID under bcrypt's 72-byte input limit
// (32 hex chars + 26 ULID chars).
const secretBytes = 16

// NewSecret generates a cryptographically random 32-character hex secret.
func NewSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewOneTime returns a one-time token bound to accountID. The account id is
// public; only the random prefix carries entropy.
func NewOneTime(accountID string) (string, error) {
	secret, err := NewSecret()
	if err != nil {
		return "", err
	}
	return secret + accountID, nil
}
