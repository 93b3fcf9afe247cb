package verification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-nosql/internal/application/lifecycle"
	"github.com/go-auth-nosql/internal/application/lifecycle/lifecycletest"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Put(ctx context.Context, t *domain.AccountToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTokenStore) Get(ctx context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error) {
	args := m.Called(ctx, userID, kind)
	if t, _ := args.Get(0).(*domain.AccountToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenStore) Delete(ctx context.Context, userID string, kind domain.TokenKind) error {
	return m.Called(ctx, userID, kind).Error(0)
}
func (m *mockTokenStore) Claim(ctx context.Context, userID string, kind domain.TokenKind, digest string) error {
	return m.Called(ctx, userID, kind, digest).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, eventType, userID string) error {
	return m.Called(ctx, eventType, userID).Error(0)
}

// failingAccounts rejects every verified-flag update.
type failingAccounts struct{ *lifecycletest.Accounts }

func (failingAccounts) SetVerified(context.Context, string) error { return errors.New("throttled") }

// --- helpers ---

var t0 = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

const userID = "01HV0000000000000000000001"

type fixture struct {
	svc      *service
	tokens   *lifecycletest.Tokens
	accounts *lifecycletest.Accounts
	notifier *lifecycletest.Notifier
	clock    *lifecycletest.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:   lifecycletest.NewTokens(),
		accounts: lifecycletest.NewAccounts(domain.User{UserID: userID, Email: "ann@example.com", Name: "Ann"}),
		notifier: &lifecycletest.Notifier{},
		clock:    lifecycletest.NewClock(t0),
	}
	f.svc = NewService(ServiceDeps{
		Tokens:   f.tokens,
		Accounts: f.accounts,
		Hasher:   secret.NewHasher(4),
		Notifier: f.notifier,
		Windows:  lifecycle.DefaultWindows(),
		BaseURL:  "http://localhost:5000",
	}).(*service)
	f.svc.now = f.clock.Now
	return f
}

func (f *fixture) issue(t *testing.T) string {
	t.Helper()
	u, err := f.accounts.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Issue(context.Background(), u))
	link := f.notifier.Last().Message.Link
	return link[strings.LastIndex(link, "/")+1:]
}

// --- Issue tests ---

func TestIssue_PersistsHashAndSendsLink(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)

	rec, err := f.tokens.Get(context.Background(), userID, domain.TokenVerification)
	require.NoError(t, err)
	assert.NotEqual(t, token, rec.TokenHash)
	assert.NotContains(t, rec.TokenHash, token)
	assert.Equal(t, t0.Add(6*time.Hour), rec.ExpiresAt)
	assert.True(t, strings.HasSuffix(token, userID))

	sent := f.notifier.Last()
	assert.Equal(t, "ann@example.com", sent.To)
	assert.Equal(t, domain.TokenVerification, sent.Message.Kind)
	assert.Equal(t, "http://localhost:5000/user/verify/"+userID+"/"+token, sent.Message.Link)
	assert.Equal(t, 6*time.Hour, sent.Message.ExpiresIn)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	f := newFixture(t)
	a := f.issue(t)
	b := f.issue(t)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 1, f.tokens.Len())
}

func TestIssue_NotifierFailure_TokenKept(t *testing.T) {
	f := newFixture(t)
	f.notifier.Err = errors.New("smtp down")
	u, _ := f.accounts.Get(context.Background(), userID)

	err := f.svc.Issue(context.Background(), u)

	require.Error(t, err)
	assert.Equal(t, domain.KindDependency, domain.Kind(err))
	assert.Equal(t, 1, f.tokens.Len())
}

func TestIssue_StoreFailure(t *testing.T) {
	f := newFixture(t)
	ts := &mockTokenStore{}
	ts.On("Put", mock.Anything, mock.AnythingOfType("*domain.AccountToken")).Return(errors.New("throttled"))
	f.svc.tokens = ts
	u, _ := f.accounts.Get(context.Background(), userID)

	err := f.svc.Issue(context.Background(), u)

	assert.True(t, errors.Is(err, domain.ErrDependency))
	assert.Empty(t, f.notifier.Sent())
	ts.AssertExpectations(t)
}

func TestIssue_RequiresAccount(t *testing.T) {
	f := newFixture(t)
	assert.True(t, errors.Is(f.svc.Issue(context.Background(), nil), domain.ErrBadRequest))
	assert.True(t, errors.Is(f.svc.Issue(context.Background(), &domain.User{UserID: "x"}), domain.ErrBadRequest))
}

// --- Consume tests ---

func TestConsume_HappyPath(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	f.clock.Advance(time.Hour)

	require.NoError(t, f.svc.Consume(context.Background(), userID, token))

	u, err := f.accounts.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Equal(t, 0, f.tokens.Len())
}

func TestConsume_SecondAttemptReportsAlreadyVerified(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	require.NoError(t, f.svc.Consume(context.Background(), userID, token))

	err := f.svc.Consume(context.Background(), userID, token)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "verified already")
	u, _ := f.accounts.Get(context.Background(), userID)
	assert.True(t, u.Verified)
}

func TestConsume_Mismatch_TokenRetained(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)

	err := f.svc.Consume(context.Background(), userID, "0000"+token[4:])

	assert.True(t, errors.Is(err, domain.ErrMismatch))
	assert.Equal(t, 1, f.tokens.Len())
	u, _ := f.accounts.Get(context.Background(), userID)
	assert.False(t, u.Verified)

	require.NoError(t, f.svc.Consume(context.Background(), userID, token))
}

func TestConsume_ReissueInvalidatesPrevious(t *testing.T) {
	f := newFixture(t)
	old := f.issue(t)
	fresh := f.issue(t)

	assert.True(t, errors.Is(f.svc.Consume(context.Background(), userID, old), domain.ErrMismatch))
	require.NoError(t, f.svc.Consume(context.Background(), userID, fresh))
}

func TestConsume_ExpiredAtBoundary_PurgesAccount(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	f.clock.Advance(6 * time.Hour)

	err := f.svc.Consume(context.Background(), userID, token)

	assert.True(t, errors.Is(err, domain.ErrExpired))
	assert.Equal(t, 0, f.tokens.Len())
	_, err = f.accounts.Get(context.Background(), userID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = f.svc.Consume(context.Background(), userID, token)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConsume_JustBeforeExpiry(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	f.clock.Advance(6*time.Hour - time.Second)

	require.NoError(t, f.svc.Consume(context.Background(), userID, token))
}

func TestConsume_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Consume(context.Background(), "nobody", "whatever")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "doesn't exist")
}

func TestConsume_EmptyInput(t *testing.T) {
	f := newFixture(t)
	assert.True(t, errors.Is(f.svc.Consume(context.Background(), "", "x"), domain.ErrBadRequest))
	assert.True(t, errors.Is(f.svc.Consume(context.Background(), userID, ""), domain.ErrBadRequest))
}

func TestConsume_ConcurrentCorrectToken_SingleSuccess(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.Consume(context.Background(), userID, token)
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrNotFound), err)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, f.tokens.Len())
}

func TestConsume_ClaimFailure_AccountUntouched(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	rec, _ := f.tokens.Get(context.Background(), userID, domain.TokenVerification)

	ts := &mockTokenStore{}
	ts.On("Get", mock.Anything, userID, domain.TokenVerification).Return(rec, nil)
	ts.On("Claim", mock.Anything, userID, domain.TokenVerification, rec.TokenHash).Return(errors.New("timeout"))
	f.svc.tokens = ts

	err := f.svc.Consume(context.Background(), userID, token)

	assert.Equal(t, domain.KindDependency, domain.Kind(err))
	u, _ := f.accounts.Get(context.Background(), userID)
	assert.False(t, u.Verified)
	ts.AssertExpectations(t)
}

func TestConsume_UpdateFailure_TokenRestored(t *testing.T) {
	f := newFixture(t)
	token := f.issue(t)
	f.svc.accounts = &failingAccounts{Accounts: f.accounts}

	err := f.svc.Consume(context.Background(), userID, token)

	assert.Equal(t, domain.KindDependency, domain.Kind(err))
	assert.Equal(t, 1, f.tokens.Len())

	f.svc.accounts = f.accounts
	require.NoError(t, f.svc.Consume(context.Background(), userID, token))
}

func TestConsume_LookupFailure(t *testing.T) {
	f := newFixture(t)
	ts := &mockTokenStore{}
	ts.On("Get", mock.Anything, userID, domain.TokenVerification).Return(nil, errors.New("throttled"))
	f.svc.tokens = ts

	err := f.svc.Consume(context.Background(), userID, "tok")
	assert.Equal(t, domain.KindDependency, domain.Kind(err))
}

func TestConsume_MalformedDigest(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tokens.Put(context.Background(), &domain.AccountToken{
		UserID: userID, Kind: domain.TokenVerification, TokenHash: "not-bcrypt", ExpiresAt: t0.Add(time.Hour),
	}))

	err := f.svc.Consume(context.Background(), userID, "tok")
	assert.True(t, errors.Is(err, domain.ErrDependency))
	assert.True(t, errors.Is(err, domain.ErrHashing))
}

func TestConsume_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, lifecycle.EventAccountVerified, userID).Return(errors.New("sns down"))
	f.svc.publisher = pub
	token := f.issue(t)

	require.NoError(t, f.svc.Consume(context.Background(), userID, token))
	pub.AssertExpectations(t)
}
