package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "http://localhost:5000", cfg.AppBaseURL)
	assert.Equal(t, "account_tokens", cfg.DynamoTables.AccountTokens)
	assert.Equal(t, "smtp", cfg.MailDriver)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 6*time.Hour, cfg.VerificationTTL)
	assert.Equal(t, time.Hour, cfg.ResetTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://api.example.com/")
	t.Setenv("MAIL_DRIVER", "SES")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("VERIFICATION_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()
	assert.Equal(t, "https://api.example.com", cfg.AppBaseURL)
	assert.Equal(t, "ses", cfg.MailDriver)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 90*time.Minute, cfg.VerificationTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "lots")
	t.Setenv("RESET_TTL", "-5m")
	t.Setenv("TRUST_PROXY", "maybe")

	cfg := Load()
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.ResetTTL)
	assert.False(t, cfg.TrustProxy)
}
