package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-auth-nosql/internal/domain"
)

// Dependency logs a failed store, hasher or notifier call and returns it
// wrapped as domain.ErrDependency. Retrying is left to the caller.
func Dependency(ctx context.Context, op, userID string, err error) error {
	slog.ErrorContext(ctx, "lifecycle dependency failure", "op", op, "user_id", userID, "err", err)
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDependency, err)
}

// Publisher receives lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, eventType, userID string) error
}

// Event types.
const (
	EventAccountVerified = "account.verified"
	EventAccountPurged   = "account.purged"
	EventPasswordReset   = "password.reset"
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string) error { return nil }

// Emit publishes an event. Failures are logged and never change the outcome
// of the operation that triggered them.
func Emit(ctx context.Context, p Publisher, eventType, userID string) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, userID); err != nil {
		slog.WarnContext(ctx, "failed to publish lifecycle event", "event", eventType, "user_id", userID, "err", err)
	}
}

// TokenWriter is the store a claimed token is written back to.
type TokenWriter interface {
	Put(ctx context.Context, t *domain.AccountToken) error
}

// Restore writes a claimed token back after the account update it guarded
// failed, so the same link can be retried. A failure is only logged.
func Restore(ctx context.Context, w TokenWriter, rec *domain.AccountToken) {
	if err := w.Put(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to restore claimed token",
			"user_id", rec.UserID, "kind", rec.Kind, "err", err)
	}
}
