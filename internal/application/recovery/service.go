// Package recovery runs the password reset flow: issue a reset link for a
// verified account, then consume it to replace the password.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-auth-nosql/internal/application/lifecycle"
	"github.com/go-auth-nosql/internal/application/notification"
	"github.com/go-auth-nosql/internal/domain"
)

type Service interface {
	Issue(ctx context.Context, email, redirectBase string) error
	Consume(ctx context.Context, userID, token, newPassword string) error
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.AccountToken) error
	Get(ctx context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error)
	Delete(ctx context.Context, userID string, kind domain.TokenKind) error
	Claim(ctx context.Context, userID string, kind domain.TokenKind, digest string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
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
}

type service struct {
	tokens    tokenStore
	accounts  accountStore
	hasher    hasher
	notifier  notifier
	publisher lifecycle.Publisher
	windows   lifecycle.Windows
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
		now:       time.Now,
	}
}

func (s *service) Issue(ctx context.Context, email, redirectBase string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if err := lifecycle.CheckBase(redirectBase); err != nil {
		return err
	}
	u, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no account with the supplied email exists: %w", domain.ErrNotFound)
	}
	if err != nil {
		return lifecycle.Dependency(ctx, "look up account by email", "", err)
	}
	if !u.Verified {
		return fmt.Errorf("email hasn't been verified yet, check your inbox: %w", domain.ErrPolicy)
	}

	if err := s.tokens.Delete(ctx, u.UserID, domain.TokenReset); err != nil {
		return lifecycle.Dependency(ctx, "clear previous reset token", u.UserID, err)
	}
	token, err := lifecycle.NewTokenString(u.UserID)
	if err != nil {
		return lifecycle.Dependency(ctx, "generate reset token", u.UserID, err)
	}
	link, err := lifecycle.ResetLink(redirectBase, u.UserID, token)
	if err != nil {
		return err
	}
	digest, err := s.hasher.Hash(token)
	if err != nil {
		return lifecycle.Dependency(ctx, "hash reset token", u.UserID, err)
	}
	rec := s.windows.NewRecord(u.UserID, domain.TokenReset, digest, s.now())
	if err := s.tokens.Put(ctx, rec); err != nil {
		return lifecycle.Dependency(ctx, "persist reset token", u.UserID, err)
	}
	msg := notification.Message{
		Kind:      domain.TokenReset,
		Link:      link,
		ExpiresIn: s.windows.WindowFor(domain.TokenReset),
	}
	if err := s.notifier.SendLink(ctx, u.Email, msg); err != nil {
		return lifecycle.Dependency(ctx, "send reset email", u.UserID, err)
	}
	slog.InfoContext(ctx, "reset token issued", "user_id", u.UserID, "expires_at", rec.ExpiresAt)
	return nil
}

func (s *service) Consume(ctx context.Context, userID, token, newPassword string) error {
	if userID == "" || token == "" {
		return fmt.Errorf("account id and reset token required: %w", domain.ErrBadRequest)
	}
	if len(newPassword) < domain.MinPasswordLength || len(newPassword) > domain.MaxPasswordLength {
		return fmt.Errorf("password must be %d to %d characters: %w",
			domain.MinPasswordLength, domain.MaxPasswordLength, domain.ErrBadRequest)
	}

	rec, err := s.tokens.Get(ctx, userID, domain.TokenReset)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("password reset request not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return lifecycle.Dependency(ctx, "load reset token", userID, err)
	}

	if lifecycle.IsExpired(rec.ExpiresAt, s.now()) {
		if err := s.tokens.Delete(ctx, userID, domain.TokenReset); err != nil {
			return lifecycle.Dependency(ctx, "delete expired reset token", userID, err)
		}
		return fmt.Errorf("password reset link has expired: %w", domain.ErrExpired)
	}

	ok, err := s.hasher.Compare(token, rec.TokenHash)
	if err != nil {
		return lifecycle.Dependency(ctx, "compare reset token", userID, err)
	}
	if !ok {
		return fmt.Errorf("invalid password reset details passed: %w", domain.ErrMismatch)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return lifecycle.Dependency(ctx, "hash new password", userID, err)
	}
	if err := s.tokens.Claim(ctx, userID, domain.TokenReset, rec.TokenHash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("password reset request not found: %w", domain.ErrNotFound)
		}
		return lifecycle.Dependency(ctx, "claim reset token", userID, err)
	}
	if err := s.accounts.SetPasswordHash(ctx, userID, hash); err != nil {
		lifecycle.Restore(ctx, s.tokens, rec)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account record doesn't exist: %w", domain.ErrNotFound)
		}
		return lifecycle.Dependency(ctx, "update password", userID, err)
	}
	lifecycle.Emit(ctx, s.publisher, lifecycle.EventPasswordReset, userID)
	return nil
}
