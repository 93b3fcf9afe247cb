// Package verification issues and consumes email verification tokens.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-nosql/internal/application/lifecycle"
	"github.com/go-auth-nosql/internal/application/notification"
	"github.com/go-auth-nosql/internal/domain"
)

type Service interface {
	Issue(ctx context.Context, u *domain.User) error
	Consume(ctx context.Context, userID, token string) error
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.AccountToken) error
	Get(ctx context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error)
	Delete(ctx context.Context, userID string, kind domain.TokenKind) error
	Claim(ctx context.Context, userID string, kind domain.TokenKind, digest string) error
}

type accountStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetVerified(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

type hasher interface {
	Hash(secret string) (string, error)
	Compare(secret, digest string) (bool, error)
}

type notifier interface {
	SendLink(ctx context.Context, to string, msg notification.Message) error
}

type ServiceDeps struct {
	Tokens    tokenStore
	Accounts  accountStore
	Hasher    hasher
	Notifier  notifier
	Publisher lifecycle.Publisher
	Windows   lifecycle.Windows
	BaseURL   string // public origin of this API
}

type service struct {
	tokens    tokenStore
	accounts  accountStore
	hasher    hasher
	notifier  notifier
	publisher lifecycle.Publisher
	windows   lifecycle.Windows
	baseURL   string
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	pub := deps.Publisher
	if pub == nil {
		pub = lifecycle.NopPublisher{}
	}
	return &service{
		tokens:    deps.Tokens,
		accounts:  deps.Accounts,
		hasher:    deps.Hasher,
		notifier:  deps.Notifier,
		publisher: pub,
		windows:   deps.Windows,
		baseURL:   deps.BaseURL,
		now:       time.Now,
	}
}

func (s *service) Issue(ctx context.Context, u *domain.User) error {
	if u == nil || u.UserID == "" || u.Email == "" {
		return fmt.Errorf("account id and email required: %w", domain.ErrBadRequest)
	}
	token, err := lifecycle.NewTokenString(u.UserID)
	if err != nil {
		return lifecycle.Dependency(ctx, "generate verification token", u.UserID, err)
	}
	link, err := lifecycle.VerificationLink(s.baseURL, u.UserID, token)
	if err != nil {
		return lifecycle.Dependency(ctx, "build verification link", u.UserID, err)
	}
	digest, err := s.hasher.Hash(token)
	if err != nil {
		return lifecycle.Dependency(ctx, "hash verification token", u.UserID, err)
	}
	rec := s.windows.NewRecord(u.UserID, domain.TokenVerification, digest, s.now())
	if err := s.tokens.Put(ctx, rec); err != nil {
		return lifecycle.Dependency(ctx, "persist verification token", u.UserID, err)
	}
	msg := notification.Message{
		Kind:      domain.TokenVerification,
		Link:      link,
		ExpiresIn: s.windows.WindowFor(domain.TokenVerification),
	}
	if err := s.notifier.SendLink(ctx, u.Email, msg); err != nil {
		return lifecycle.Dependency(ctx, "send verification email", u.UserID, err)
	}
	slog.InfoContext(ctx, "verification token issued", "user_id", u.UserID, "expires_at", rec.ExpiresAt)
	return nil
}

func (s *service) Consume(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		return fmt.Errorf("account id and token required: %w", domain.ErrBadRequest)
	}
	rec, err := s.tokens.Get(ctx, userID, domain.TokenVerification)
	if errors.Is(err, domain.ErrNotFound) {
		return s.missingToken(ctx, userID)
	}
	if err != nil {
		return lifecycle.Dependency(ctx, "load verification token", userID, err)
	}

	if lifecycle.IsExpired(rec.ExpiresAt, s.now()) {
		if err := s.tokens.Delete(ctx, userID, domain.TokenVerification); err != nil {
			return lifecycle.Dependency(ctx, "delete expired verification token", userID, err)
		}
		if err := s.accounts.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return lifecycle.Dependency(ctx, "delete unverified account", userID, err)
		}
		slog.InfoContext(ctx, "expired verification purged account", "user_id", userID)
		lifecycle.Emit(ctx, s.publisher, lifecycle.EventAccountPurged, userID)
		return fmt.Errorf("link has expired, please sign up again: %w", domain.ErrExpired)
	}

	ok, err := s.hasher.Compare(token, rec.TokenHash)
	if err != nil {
		return lifecycle.Dependency(ctx, "compare verification token", userID, err)
	}
	if !ok {
		return fmt.Errorf("invalid verification details passed, check your inbox: %w", domain.ErrMismatch)
	}

	// Only the caller that removes this exact record may verify.
	if err := s.tokens.Claim(ctx, userID, domain.TokenVerification, rec.TokenHash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.missingToken(ctx, userID)
		}
		return lifecycle.Dependency(ctx, "claim verification token", userID, err)
	}
	if err := s.accounts.SetVerified(ctx, userID); err != nil {
		lifecycle.Restore(ctx, s.tokens, rec)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account record doesn't exist: %w", domain.ErrNotFound)
		}
		return lifecycle.Dependency(ctx, "mark account verified", userID, err)
	}
	lifecycle.Emit(ctx, s.publisher, lifecycle.EventAccountVerified, userID)
	return nil
}

// missingToken distinguishes an already verified account from one that
// never existed or was purged.
func (s *service) missingToken(ctx context.Context, userID string) error {
	u, err := s.accounts.Get(ctx, userID)
	if err == nil && u.Verified {
		return fmt.Errorf("account has been verified already, please sign in: %w", domain.ErrNotFound)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "account lookup after missing verification token failed", "user_id", userID, "err", err)
	}
	return fmt.Errorf("account record doesn't exist or has been verified already: %w", domain.ErrNotFound)
}
