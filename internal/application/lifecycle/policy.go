// Package lifecycle holds the rules shared by the verification and password
// reset flows: expiry windows, the expiry test, one-time token construction
// and link building. Everything here is free of I/O except the failure and
// event helpers, which only log.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	pkgtoken "github.com/go-auth-nosql/internal/pkg/token"
)

// Default windows.
const (
	DefaultVerificationWindow = 6 * time.Hour
	DefaultResetWindow        = 60 * time.Minute

	// purgeGrace is added to expires_at to form the store-side TTL.
	purgeGrace = 30 * 24 * time.Hour
)

// Windows holds the validity window per token kind.
type Windows struct {
	Verification time.Duration
	Reset        time.Duration
}

// DefaultWindows returns the 6 hour / 60 minute windows.
func DefaultWindows() Windows {
	return Windows{Verification: DefaultVerificationWindow, Reset: DefaultResetWindow}
}

// WindowFor returns the validity window for kind. Zero values fall back to
// the defaults.
func (w Windows) WindowFor(kind domain.TokenKind) time.Duration {
	switch kind {
	case domain.TokenVerification:
		if w.Verification > 0 {
			return w.Verification
		}
		return DefaultVerificationWindow
	case domain.TokenReset:
		if w.Reset > 0 {
			return w.Reset
		}
		return DefaultResetWindow
	default:
		panic(fmt.Sprintf("lifecycle: unknown token kind %q", kind))
	}
}

// IsExpired reports whether a token expiring at expiresAt is no longer valid at now.
func IsExpired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}

// NewTokenString returns a fresh one-time token bound to accountID.
func NewTokenString(accountID string) (string, error) {
	return pkgtoken.NewOneTime(accountID)
}

// NewRecord builds the persisted record for a hashed token issued at now.
func (w Windows) NewRecord(accountID string, kind domain.TokenKind, digest string, now time.Time) *domain.AccountToken {
	now = now.UTC()
	expires := now.Add(w.WindowFor(kind))
	return &domain.AccountToken{
		UserID:    accountID,
		Kind:      kind,
		TokenHash: digest,
		CreatedAt: now,
		ExpiresAt: expires,
		PurgeAt:   expires.Add(purgeGrace).Unix(),
	}
}
