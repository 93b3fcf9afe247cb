// Package finance manages spending categories and their transactions.
package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	"github.com/go-auth-nosql/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName    = "name"
	fieldDefault = "default"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

type Service interface {
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	CreateTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, categoryID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	Delete(ctx context.Context, categoryID string) error
}

type transactionStore interface {
	Put(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Scan(ctx context.Context) ([]domain.Transaction, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Transaction, error)
	ClearCategory(ctx context.Context, transactionID string) error
	Delete(ctx context.Context, transactionID string) error
}

type service struct {
	categories   categoryStore
	transactions transactionStore
	now          func() time.Time
}

func NewService(categories categoryStore, transactions transactionStore) Service {
	return &service{categories: categories, transactions: transactions, now: time.Now}
}

func (s *service) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	now := s.now().UTC()
	c := &domain.Category{
		CategoryID: id.New(),
		Name:       in.Name,
		Default:    in.IsDefault != nil && *in.IsDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.categories.Put(ctx, c); err != nil {
		return nil, storeErr("save category", err)
	}
	return c, nil
}

func (s *service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cs, err := s.categories.Scan(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return cs, nil
}

func (s *service) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, storeErr("get category", err)
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	updates := map[string]interface{}{fieldName: in.Name}
	if in.IsDefault != nil {
		updates[fieldDefault] = *in.IsDefault
	}
	if err := s.categories.Update(ctx, categoryID, updates); err != nil {
		return nil, storeErr("update category", err)
	}
	return s.GetCategory(ctx, categoryID)
}

// DeleteCategory detaches the category's transactions before removing it.
// Default categories cannot be deleted.
func (s *service) DeleteCategory(ctx context.Context, categoryID string) error {
	c, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return storeErr("get category", err)
	}
	if c.Default {
		return fmt.Errorf("cannot delete default category: %w", domain.ErrPolicy)
	}
	txs, err := s.transactions.ListByCategory(ctx, categoryID)
	if err != nil {
		return storeErr("list category transactions", err)
	}
	for _, t := range txs {
		if err := s.transactions.ClearCategory(ctx, t.TransactionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return storeErr("detach transaction", err)
		}
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return storeErr("delete category", err)
	}
	return nil
}

func (s *service) CreateTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	date, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	if in.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("category does not exist: %w", domain.ErrBadRequest)
			}
			return nil, storeErr("get category", err)
		}
	}
	t := &domain.Transaction{
		TransactionID: id.New(),
		CategoryID:    in.CategoryID,
		Description:   in.Description,
		Amount:        *in.Amount,
		Status:        in.Status,
		Date:          date,
	}
	if err := s.transactions.Put(ctx, t); err != nil {
		return nil, storeErr("save transaction", err)
	}
	return t, nil
}

// ListTransactions returns all transactions, or only those of categoryID
// when it is set, newest first.
func (s *service) ListTransactions(ctx context.Context, categoryID string) ([]domain.Transaction, error) {
	var (
		txs []domain.Transaction
		err error
	)
	if categoryID != "" {
		txs, err = s.transactions.ListByCategory(ctx, categoryID)
	} else {
		txs, err = s.transactions.Scan(ctx)
	}
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

func (s *service) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, storeErr("get transaction", err)
	}
	return t, nil
}

func (s *service) DeleteTransaction(ctx context.Context, transactionID string) error {
	if _, err := s.transactions.Get(ctx, transactionID); err != nil {
		return storeErr("get transaction", err)
	}
	if err := s.transactions.Delete(ctx, transactionID); err != nil {
		return storeErr("delete transaction", err)
	}
	return nil
}

func (s *service) parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return s.now().UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date must be RFC 3339 or YYYY-MM-DD: %w", domain.ErrBadRequest)
}

// storeErr keeps not-found answers and classifies everything else as a
// dependency failure.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDependency, err)
}
