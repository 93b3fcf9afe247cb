// Package user registers accounts and signs them in.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	"github.com/go-auth-nosql/internal/pkg/validate"
)

// Accepted date-of-birth layouts.
var dobLayouts = []string{"2006-01-02", "01-02-2006"}

type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error)
	SignIn(ctx context.Context, req domain.SignInRequest) (*domain.User, string, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type hasher interface {
	Hash(secret string) (string, error)
	Compare(secret, digest string) (bool, error)
}

type verificationIssuer interface {
	Issue(ctx context.Context, u *domain.User) error
}

type jwtSigner interface {
	Sign(userID, email string) (string, error)
}

type service struct {
	repo         userStore
	hasher       hasher
	verification verificationIssuer
	jwtProvider  jwtSigner
	now          func() time.Time
}

type ServiceDeps struct {
	UserRepo     userStore
	Hasher       hasher
	Verification verificationIssuer
	JWTProvider  jwtSigner // optional; sign-in returns no bearer when nil
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.UserRepo,
		hasher:       deps.Hasher,
		verification: deps.Verification,
		jwtProvider:  deps.JWTProvider,
		now:          time.Now,
	}
}

// SignUp persists an unverified account and sends its verification link.
// When the link cannot be sent the account is returned together with the error.
func (s *service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	dob, err := parseDOB(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user with the provided email already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w: %w", domain.ErrDependency, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w: %w", domain.ErrDependency, err)
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		DateOfBirth:  dob,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("save user account: %w: %w", domain.ErrDependency, err)
	}
	slog.InfoContext(ctx, "account created", "user_id", u.UserID)

	if err := s.verification.Issue(ctx, u); err != nil {
		return u, fmt.Errorf("verification email failed: %w", err)
	}
	return u, nil
}

func (s *service) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("empty credentials supplied: %w", domain.ErrBadRequest)
	}
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("invalid credentials entered: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("look up user: %w: %w", domain.ErrDependency, err)
	}
	if !u.Verified {
		return nil, "", fmt.Errorf("email hasn't been verified yet, check your inbox: %w", domain.ErrPolicy)
	}
	ok, err := s.hasher.Compare(req.Password, u.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("compare password: %w: %w", domain.ErrDependency, err)
	}
	if !ok {
		return nil, "", fmt.Errorf("invalid password entered: %w", domain.ErrUnauthorized)
	}
	if s.jwtProvider == nil {
		return u, "", nil
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, "", fmt.Errorf("sign bearer token: %w: %w", domain.ErrDependency, err)
	}
	return u, bearer, nil
}

func parseDOB(s string) (time.Time, error) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date of birth entered: %w", domain.ErrBadRequest)
}
