package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-nosql/internal/domain"
)

// TokenRepo manages hashed one-time verification and reset tokens.
// PK: user_id, SK: kind ("verification" | "reset"). A Put replaces any
// existing token of the same kind for the account.
type TokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTokenRepo(client *dynamodb.Client, tableName string) *TokenRepo {
	return &TokenRepo{client: client, tableName: tableName}
}

func (r *TokenRepo) Put(ctx context.Context, t *domain.AccountToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal account token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get reads with strong consistency so expiry and single-use checks always
// see the latest write.
func (r *TokenRepo) Get(ctx context.Context, userID string, kind domain.TokenKind) (*domain.AccountToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            compositeKey(fieldUserID, userID, fieldKind, string(kind)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s token not found: %w", kind, domain.ErrNotFound)
	}
	var t domain.AccountToken
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the account's token of the given kind. Deleting a missing
// token is not an error.
func (r *TokenRepo) Delete(ctx context.Context, userID string, kind domain.TokenKind) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldUserID, userID, fieldKind, string(kind)),
	})
	return err
}

// Claim deletes the token only while it still carries digest. It fails with
// ErrNotFound when the token is gone or was replaced, so at most one caller
// claims a given token.
func (r *TokenRepo) Claim(ctx context.Context, userID string, kind domain.TokenKind, digest string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey(fieldUserID, userID, fieldKind, string(kind)),
		ConditionExpression:       aws.String("#h = :h"),
		ExpressionAttributeNames:  map[string]string{"#h": fieldTokenHash},
		ExpressionAttributeValues: map[string]types.AttributeValue{":h": &types.AttributeValueMemberS{Value: digest}},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s token already used: %w", kind, domain.ErrNotFound)
	}
	return err
}
