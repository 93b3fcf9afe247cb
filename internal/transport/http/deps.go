package http

import (
	"context"

	"github.com/go-auth-nosql/internal/application/notification"
	"github.com/go-auth-nosql/internal/domain"
)

// UserRepository is the minimal interface the router requires from an account store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerified(ctx context.Context, userID string) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	Delete(ctx context.Context, userID string) error
}

// TokenRepository is the minimal interface the router requires from the
// one-time token store.
type TokenRepository interface {
	Put(ctx context.Context, t *domain.AccountToken) error
	Get(ctx context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error)
	Delete(ctx context.Context, userID string, kind domain.TokenKind) error
	Claim(ctx context.Context, userID string, kind domain.TokenKind, digest string) error
}

// CategoryRepository is the minimal interface the router requires from a category store.
type CategoryRepository interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	Delete(ctx context.Context, categoryID string) error
}

// TransactionRepository is the minimal interface the router requires from a transaction store.
type TransactionRepository interface {
	Put(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Scan(ctx context.Context) ([]domain.Transaction, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Transaction, error)
	ClearCategory(ctx context.Context, transactionID string) error
	Delete(ctx context.Context, transactionID string) error
}

// SecretHasher hashes and compares passwords and tokens.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(secret, digest string) (bool, error)
}

// LinkNotifier delivers verification and reset links.
type LinkNotifier interface {
	SendLink(ctx context.Context, to string, msg notification.Message) error
}
