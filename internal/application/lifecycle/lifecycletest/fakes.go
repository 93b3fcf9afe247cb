// Package lifecycletest provides in-memory stores and a recording notifier
// for exercising the verification and reset flows without DynamoDB or mail.
package lifecycletest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-auth-nosql/internal/application/notification"
	"github.com/go-auth-nosql/internal/domain"
)

// Tokens is an in-memory token store keyed by (user id, kind).
type Tokens struct {
	mu   sync.Mutex
	recs map[string]domain.AccountToken
}

func NewTokens() *Tokens {
	return &Tokens{recs: map[string]domain.AccountToken{}}
}

func tokenKey(userID string, kind domain.TokenKind) string { return userID + "#" + string(kind) }

func (s *Tokens) Put(_ context.Context, t *domain.AccountToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[tokenKey(t.UserID, t.Kind)] = *t
	return nil
}

func (s *Tokens) Get(_ context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.recs[tokenKey(userID, kind)]
	if !ok {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	return &t, nil
}

func (s *Tokens) Delete(_ context.Context, userID string, kind domain.TokenKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, tokenKey(userID, kind))
	return nil
}

// Claim deletes the record only if it still carries digest.
func (s *Tokens) Claim(_ context.Context, userID string, kind domain.TokenKind, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := tokenKey(userID, kind)
	if t, ok := s.recs[k]; !ok || t.TokenHash != digest {
		return fmt.Errorf("token already used: %w", domain.ErrNotFound)
	}
	delete(s.recs, k)
	return nil
}

// Len returns the number of stored records.
func (s *Tokens) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// Accounts is an in-memory account store.
type Accounts struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewAccounts(users ...domain.User) *Accounts {
	a := &Accounts{users: map[string]domain.User{}}
	for _, u := range users {
		a.users[u.UserID] = u
	}
	return a
}

func (s *Accounts) Put(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.UserID]; ok {
		return fmt.Errorf("user exists: %w", domain.ErrConflict)
	}
	s.users[u.UserID] = *u
	return nil
}

func (s *Accounts) Get(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (s *Accounts) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (s *Accounts) SetVerified(_ context.Context, userID string) error {
	return s.mutate(userID, func(u *domain.User) { u.Verified = true })
}

func (s *Accounts) SetPasswordHash(_ context.Context, userID, hash string) error {
	return s.mutate(userID, func(u *domain.User) { u.PasswordHash = hash })
}

func (s *Accounts) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *Accounts) mutate(userID string, fn func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

// Sent is one captured notification.
type Sent struct {
	To      string
	Message notification.Message
}

// Notifier records every link it is asked to send.
type Notifier struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

func (n *Notifier) SendLink(_ context.Context, to string, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, Sent{To: to, Message: msg})
	return nil
}

// Sent returns a copy of the captured notifications.
func (n *Notifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

// Last returns the most recent notification.
func (n *Notifier) Last() Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return Sent{}
	}
	return n.sent[len(n.sent)-1]
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
