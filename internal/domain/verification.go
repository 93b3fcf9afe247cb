package domain

import "time"

// TokenKind namespaces one-time tokens inside the account_tokens table.
type TokenKind string

const (
	TokenVerification TokenKind = "verification"
	TokenReset        TokenKind = "reset"
)

// AccountToken stores the hash of a one-time verification or reset token.
// PK: user_id, SK: kind. One record per kind per account.
// PurgeAt is a Unix timestamp used as DynamoDB TTL.
type AccountToken struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Kind      TokenKind `json:"kind" dynamodbav:"kind"`
	TokenHash string    `json:"-" dynamodbav:"token_hash"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	PurgeAt   int64     `json:"-" dynamodbav:"purge_at"`
}
