package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "verified"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldUpdatedAt:    "2024-01-01T00:00:00Z",
		fieldPasswordHash: "$2a$10$hash",
		"name":            "Groceries",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "name", ue1.Names["#f0"])
	assert.Equal(t, "password_hash", ue1.Names["#f1"])
	assert.Equal(t, "updated_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldVerified: true})
	require.NoError(t, err)
	boolVal, isBool := ue.Values[":v0"].(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCompositeKey(t *testing.T) {
	k := compositeKey(fieldUserID, "u1", fieldKind, string(domain.TokenReset))
	assert.Equal(t, "u1", k[fieldUserID].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "reset", k[fieldKind].(*types.AttributeValueMemberS).Value)
}

func TestNotFoundIfConditionFailed(t *testing.T) {
	ccf := &types.ConditionalCheckFailedException{Message: strPtr("nope")}
	err := notFoundIfConditionFailed(fmt.Errorf("update: %w", ccf), "user")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	other := errors.New("throttled")
	assert.Equal(t, other, notFoundIfConditionFailed(other, "user"))
}

func strPtr(s string) *string { return &s }
