package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor(t *testing.T) {
	w := DefaultWindows()
	assert.Equal(t, 6*time.Hour, w.WindowFor(domain.TokenVerification))
	assert.Equal(t, 60*time.Minute, w.WindowFor(domain.TokenReset))

	custom := Windows{Verification: time.Hour}
	assert.Equal(t, time.Hour, custom.WindowFor(domain.TokenVerification))
	assert.Equal(t, DefaultResetWindow, custom.WindowFor(domain.TokenReset))

	assert.Panics(t, func() { w.WindowFor("bogus") })
}

func TestIsExpired_Boundary(t *testing.T) {
	exp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, IsExpired(exp, exp.Add(-time.Nanosecond)))
	assert.True(t, IsExpired(exp, exp))
	assert.True(t, IsExpired(exp, exp.Add(time.Second)))
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := DefaultWindows().NewRecord("u1", domain.TokenReset, "digest", now)

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, domain.TokenReset, rec.Kind)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), rec.ExpiresAt)
	assert.Greater(t, rec.PurgeAt, rec.ExpiresAt.Unix())
}

func TestNewTokenString_BoundToAccount(t *testing.T) {
	tok, err := NewTokenString("01HZY3K5W6N8Q9R0S1T2V3W4X5")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(tok, "01HZY3K5W6N8Q9R0S1T2V3W4X5"))
}

func TestVerificationLink(t *testing.T) {
	link, err := VerificationLink("http://localhost:5000/", "u1", "abc123u1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/user/verify/u1/abc123u1", link)
}

func TestResetLink_KeepsBasePath(t *testing.T) {
	link, err := ResetLink("https://app.example.com/reset-password", "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/reset-password/u1/tok", link)
}

func TestResetLink_RejectsRelativeOrOddSchemes(t *testing.T) {
	for _, base := range []string{"", "/reset", "javascript:alert(1)", "ftp://x.y/z"} {
		_, err := ResetLink(base, "u1", "tok")
		assert.True(t, errors.Is(err, domain.ErrBadRequest), base)
	}
}

func TestDependency_WrapsBoth(t *testing.T) {
	cause := errors.New("throttled")
	err := Dependency(context.Background(), "persist token", "u1", cause)
	assert.True(t, errors.Is(err, domain.ErrDependency))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, domain.KindDependency, domain.Kind(err))
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, string) error {
	f.calls++
	return errors.New("sns down")
}

func TestEmit_SwallowsFailures(t *testing.T) {
	p := &failingPublisher{}
	Emit(context.Background(), p, EventPasswordReset, "u1")
	assert.Equal(t, 1, p.calls)
	Emit(context.Background(), nil, EventPasswordReset, "u1")
}
